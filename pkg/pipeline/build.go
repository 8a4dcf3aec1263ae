package pipeline

import (
	"github.com/r3d91ll/tempchart/pkg/config"
	"github.com/r3d91ll/tempchart/pkg/export"
	"github.com/r3d91ll/tempchart/pkg/output"
)

// FromConfig builds a pipeline from the application configuration. Fields
// already set in base are kept, except Config, Format and BaseName which
// always come from cfg. The sink is only derived from cfg when base.Sink is
// nil.
func FromConfig(cfg *config.Config, base Options) (*Pipeline, error) {
	cc, err := cfg.ChartSettings()
	if err != nil {
		return nil, err
	}
	format, err := export.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	if base.Sink == nil {
		if base.Sink, err = SinkFromConfig(cfg); err != nil {
			return nil, err
		}
	}

	base.Config = cc
	base.Format = format
	base.BaseName = cfg.Output.BaseName
	return New(base)
}

// SinkFromConfig returns the file sink for cfg.Output, fanned out to object
// storage when cfg.Storage is enabled.
func SinkFromConfig(cfg *config.Config) (output.Sink, error) {
	files := &output.FileSink{Root: cfg.Output.Root, Dir: cfg.Output.Dir}
	if !cfg.Storage.Enabled {
		return files, nil
	}

	objects, err := output.NewObjectSink(output.ObjectStoreConfig{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		Prefix:    cfg.Storage.Prefix,
	})
	if err != nil {
		return nil, err
	}
	return output.MultiSink{files, objects}, nil
}
