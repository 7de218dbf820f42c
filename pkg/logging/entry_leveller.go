package logging

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// EntryLeveller is a zapcore.Core that filters entries on the name of their logger, so that for example
// `deploy` can log at debug while everything else stays at info. A level set for a name applies to its
// children unless they have their own.
type EntryLeveller struct {
	zapcore.Core

	levels map[string]zapcore.Level
}

func NewEntryLeveller(core zapcore.Core, levels map[string]zapcore.Level) *EntryLeveller {
	copied := make(map[string]zapcore.Level, len(levels))
	for k, v := range levels {
		copied[k] = v
	}
	return &EntryLeveller{Core: core, levels: copied}
}

func (el *EntryLeveller) With(fields []zapcore.Field) zapcore.Core {
	return &EntryLeveller{Core: el.Core.With(fields), levels: el.levels}
}

// Enabled reports true for any level a configured logger may log at. The per-name decision is made in Check.
func (el *EntryLeveller) Enabled(lvl zapcore.Level) bool {
	for _, l := range el.levels {
		if lvl >= l {
			return true
		}
	}
	return el.Core.Enabled(lvl)
}

// levelFor returns the level of the most specific configured name that the logger falls under.
func (el *EntryLeveller) levelFor(loggerName string) (zapcore.Level, bool) {
	name := loggerName
	for {
		if lvl, ok := el.levels[name]; ok {
			return lvl, true
		}
		if name == "" {
			return 0, false
		}
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			name = name[:i]
		} else {
			name = ""
		}
	}
}

func (el *EntryLeveller) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	lvl, ok := el.levelFor(e.LoggerName)
	if !ok {
		return el.Core.Check(e, ce)
	}
	if e.Level < lvl {
		return ce
	}
	return ce.AddCore(e, el)
}
