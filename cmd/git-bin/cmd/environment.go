package cmd

import (
	"context"

	"github.com/oneconcern/gitbin/pkg/cache"
	"github.com/oneconcern/gitbin/pkg/config"
	"github.com/oneconcern/gitbin/pkg/core"
	"github.com/oneconcern/gitbin/pkg/dlogger"
	"github.com/oneconcern/gitbin/pkg/remote"
	"github.com/oneconcern/gitbin/pkg/transfer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// remoteUsage tells how a command depends on the remote
type remoteUsage int

const (
	// noRemote: the command works on the cache only
	noRemote remoteUsage = iota

	// lazyRemote: the command reports a broken remote only when it actually needs it
	lazyRemote

	// requireRemote: the command fails early on a broken remote
	requireRemote
)

// environment carries the resolved settings of a command run
type environment struct {
	cfg     *config.Config
	l       *zap.Logger
	console *console
}

func loadEnvironment(cmd *cobra.Command) (*environment, error) {
	v := viper.New()
	if err := bindRootFlags(v, cmd.Root().PersistentFlags()); err != nil {
		return nil, err
	}
	cfg, err := config.Loader{
		Viper:      v,
		Git:        gitExecutor,
		ConfigFile: gitbinFlags.root.configFile,
	}.Load(cmd.Context())
	if err != nil {
		return nil, err
	}
	l, err := dlogger.GetLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	l.Debug("configuration loaded",
		zap.String("cache", cfg.CacheDirectory),
		zap.String("remote", cfg.Remote),
		zap.Int64("chunkSize", cfg.ChunkSize),
	)
	return &environment{
		cfg:     cfg,
		l:       l,
		console: newConsole(stderr),
	}, nil
}

// engine builds the core engine, with a progress display on the console
func (env *environment) engine(ctx context.Context, usage remoteUsage, ui *transferUI) (*core.Engine, error) {
	c, err := cache.New(env.cfg.CacheDirectory, cache.Logger(env.l))
	if err != nil {
		return nil, err
	}

	var r remote.Remote
	switch usage {
	case lazyRemote:
		if r, err = openRemote(ctx, env.cfg, env.l); err != nil {
			env.l.Debug("remote unavailable", zap.Error(err))
			r = remote.Unavailable(err)
		}
	case requireRemote:
		if r, err = openRemote(ctx, env.cfg, env.l); err != nil {
			return nil, err
		}
	}

	opts := []core.Option{
		core.ChunkSize(int(env.cfg.ChunkSize)),
		core.UploadConcurrency(env.cfg.UploadConcurrency),
		core.DownloadConcurrency(env.cfg.DownloadConcurrency),
		core.DownloadAttempts(env.cfg.DownloadAttempts),
		core.Logger(env.l),
	}
	if ui != nil {
		opts = append(opts, core.OnStart(ui.start), core.OnProgress(ui.progress))
	}
	return core.New(c, r, opts...)
}

// transferUI renders the start, progress and end of a transfer on the console
type transferUI struct {
	console *console
	open    bool
}

func newTransferUI(c *console) *transferUI {
	return &transferUI{console: c}
}

func (u *transferUI) start(dir core.Direction, n int) {
	switch {
	case n == 0 && dir == core.Upload:
		u.console.Printf("All chunks already present on remote")
	case n == 0:
		u.console.Printf("All chunks already present in cache")
	case dir == core.Upload:
		u.console.Start("Uploading %s: ", core.ChunkCount(n))
		u.open = true
	default:
		u.console.Start("Downloading %s: ", core.ChunkCount(n))
		u.open = true
	}
}

func (u *transferUI) progress(_ core.Direction, ev transfer.Event) {
	if u.open {
		u.console.Progress(ev)
	}
}

// close terminates the progress line, if any
func (u *transferUI) close() {
	if u.open {
		u.console.Done()
		u.open = false
	}
}
