package cmd

import (
	"context"
	"errors"
	"testing"

	coreconfig "github.com/m3rciful/gamebot/core/config"
	coretelegram "github.com/m3rciful/gamebot/core/telegram"
)

type stubApp struct {
	opts coretelegram.RunOptions
	err  error
}

func (s stubApp) TelegramRunOptions() (coretelegram.RunOptions, error) { return s.opts, s.err }

func TestRunWrapsLifecycleHooks(t *testing.T) {
	t.Setenv("GAMEBOT_TEST_CONFIG", "from-env.yaml")

	var (
		loadedPath string
		calls      []string
		shutdown   bool
	)
	app := stubApp{opts: coretelegram.RunOptions{
		OnStart: func(context.Context, coretelegram.Runtime) error { calls = append(calls, "start"); return nil },
		OnStop:  func(context.Context, coretelegram.Runtime) error { calls = append(calls, "stop"); return nil },
	}}

	err := Run(Options{
		ConfigEnvVar:      "GAMEBOT_TEST_CONFIG",
		DefaultConfigPath: "default.yaml",
		LoadConfig: func(path string) (*coreconfig.Config, error) {
			loadedPath = path
			return &coreconfig.Config{}, nil
		},
		Bootstrap: func(context.Context, *coreconfig.Config) (TelegramApp, error) { return app, nil },
		ShutdownLogger: func() error {
			shutdown = true
			return nil
		},
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			if err := opts.OnStart(ctx, coretelegram.Runtime{}); err != nil {
				return err
			}
			return opts.OnStop(ctx, coretelegram.Runtime{})
		},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if loadedPath != "from-env.yaml" {
		t.Fatalf("config path = %q", loadedPath)
	}
	if len(calls) != 2 || calls[0] != "start" || calls[1] != "stop" {
		t.Fatalf("hooks = %v", calls)
	}
	if !shutdown {
		t.Fatal("logger was not shut down")
	}
}

func TestRunStopsOnBootstrapFailure(t *testing.T) {
	boom := errors.New("boom")
	ran := false
	err := Run(Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig:        func(string) (*coreconfig.Config, error) { return &coreconfig.Config{}, nil },
		Bootstrap:         func(context.Context, *coreconfig.Config) (TelegramApp, error) { return nil, boom },
		ShutdownLogger:    func() error { return nil },
		RunTelegram: func(context.Context, coretelegram.RunOptions) error {
			ran = true
			return nil
		},
	})
	if !errors.Is(err, boom) || ran {
		t.Fatalf("err=%v ran=%v", err, ran)
	}
}

func TestRunRequiresConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	err := Run(Options{
		Bootstrap: func(context.Context, *coreconfig.Config) (TelegramApp, error) { return stubApp{}, nil },
	})
	if err == nil {
		t.Fatal("expected missing path error")
	}
}
