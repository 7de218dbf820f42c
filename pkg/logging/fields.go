package logging

import (
	"github.com/talves/gameservers/pkg/construct"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func ResourceIdField(id construct.ResourceId) zap.Field {
	return zap.Stringer("resource", id)
}

func StackField(name string) zap.Field {
	return zap.String("stack", name)
}

type assetField struct {
	key    string
	source string
}

func (f assetField) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("key", f.key)
	if f.source != "" {
		enc.AddString("source", f.source)
	}
	return nil
}

// AssetField describes a file asset by its object key and, for assets read from disk, its source path.
func AssetField(key, source string) zap.Field {
	return zap.Object("asset", assetField{key: key, source: source})
}
