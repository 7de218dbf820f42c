package clicommon

import (
	"fmt"
	"strconv"
)

// MAX_VERBOSITY is the highest useful level: debug logs, then AWS requests.
const MAX_VERBOSITY = 2

// LevelledFlag counts how often a boolean flag is given, `-vv` is 2. An explicit number sets the level and
// `=false` takes one level off. The level never goes above MAX_VERBOSITY.
type LevelledFlag int

func (f *LevelledFlag) Set(s string) error {
	if v, err := strconv.ParseBool(s); err == nil {
		if v {
			f.set(int(*f) + 1)
		} else {
			f.set(int(*f) - 1)
		}
		return nil
	}
	level, err := strconv.Atoi(s)
	if err != nil || level < 0 {
		return fmt.Errorf("expected true, false or a level from 0 to %d", MAX_VERBOSITY)
	}
	f.set(level)
	return nil
}

func (f *LevelledFlag) set(level int) {
	*f = LevelledFlag(max(0, min(level, MAX_VERBOSITY)))
}

func (f *LevelledFlag) Type() string {
	return "level"
}

func (f *LevelledFlag) String() string {
	return strconv.Itoa(int(*f))
}
