// Command docchat is a terminal client for the document assistant: upload
// documents into a session, then ask questions about them.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"github.com/deon-gracias/rag/internal/backend"
	"github.com/deon-gracias/rag/internal/config"
	"github.com/deon-gracias/rag/internal/domain"
	"github.com/deon-gracias/rag/internal/logger"
	"github.com/deon-gracias/rag/internal/metrics"
	"github.com/deon-gracias/rag/internal/registry"
	"github.com/deon-gracias/rag/internal/schema"
	"github.com/deon-gracias/rag/internal/workspace"
)

const (
	exitOK       = 0
	exitError    = 1
	exitNotFound = 2
	exitUsage    = 64
)

const usage = `usage: docchat <command> [arguments]

commands:
  sessions                          list sessions
  new                               create an empty session
  upload [-quality fast|hi-res] FILE...
                                    create a session from documents and chat in it
  chat NAME                         chat in a session
  attach NAME FILE...               add documents to a session
  delete ID                         delete a session
  health                            check the backend
`

type app struct {
	cfg    *config.Config
	client *backend.Client
	ws     *workspace.Workspace
	out    *printer
	in     io.Reader
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	_ = godotenv.Load()

	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return exitError
	}

	closer, err := logger.Setup(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		return exitError
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, cfg.Metrics.Path); err != nil {
				log.Error().Err(err).Msg("Metrics server failed")
			}
		}()
	} else {
		metrics.MustRegister()
	}

	a := newApp(cfg, os.Stdin, os.Stdout)
	return a.dispatch(ctx, args[0], args[1:])
}

func newApp(cfg *config.Config, in io.Reader, out io.Writer) *app {
	p := newPrinter(out)
	client := backend.New(cfg.Backend, backend.WithUploadProgress(func(total int64) io.WriteCloser {
		return progressbar.NewOptions64(total,
			progressbar.OptionSetDescription("uploading"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(30),
			progressbar.OptionClearOnFinish(),
		)
	}))

	ws := workspace.New(client, registry.New(), p, workspace.Options{
		SessionTTL:       cfg.Cache.SessionTTL,
		CleanupInterval:  cfg.Cache.CleanupInterval,
		MinMessageLength: cfg.Chat.MinMessageLength,
		DefaultQuality:   domain.Quality(cfg.Upload.DefaultQuality),
	})

	return &app{cfg: cfg, client: client, ws: ws, out: p, in: in}
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) int {
	var err error
	switch cmd {
	case "sessions":
		err = a.sessions(ctx)
	case "new":
		err = a.newSession(ctx)
	case "upload":
		err = a.upload(ctx, args)
	case "chat":
		if len(args) != 1 {
			return a.usageError("chat takes exactly one session name")
		}
		err = a.chat(ctx, args[0])
	case "attach":
		if len(args) < 2 {
			return a.usageError("attach takes a session name and at least one file")
		}
		err = a.attach(ctx, args[0], args[1:])
	case "delete":
		if len(args) != 1 {
			return a.usageError("delete takes exactly one session id")
		}
		err = a.delete(ctx, args[0])
	case "health":
		err = a.health(ctx)
	case "help", "-h", "--help":
		fmt.Fprint(a.out.w, usage)
		return exitOK
	default:
		return a.usageError(fmt.Sprintf("unknown command %q", cmd))
	}
	return a.exitCode(err)
}

func (a *app) usageError(msg string) int {
	a.out.failure(msg)
	fmt.Fprint(os.Stderr, usage)
	return exitUsage
}

func (a *app) exitCode(err error) int {
	var uerr usageErr
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, flag.ErrHelp):
		return exitUsage
	case errors.As(err, &uerr):
		return a.usageError(uerr.Error())
	case errors.Is(err, workspace.ErrNotFound):
		a.out.notFound(err)
		return exitNotFound
	default:
		a.out.failure(describe(err))
		return exitError
	}
}

type usageErr string

func (e usageErr) Error() string { return string(e) }

// describe turns an error into one user-facing line. Transport, status and
// validation failures collapse into "operation failed"; details stay in the
// log.
func describe(err error) string {
	var (
		transport *backend.TransportError
		status    *backend.StatusError
		invalid   *schema.ValidationError
	)
	switch {
	case errors.Is(err, domain.ErrNoFiles),
		errors.Is(err, domain.ErrInvalidQuality):
		return err.Error()
	case errors.As(err, &transport):
		log.Error().Err(err).Msg("Backend unreachable")
		return "operation failed: backend unreachable"
	case errors.As(err, &status), errors.As(err, &invalid), errors.Is(err, backend.ErrRejected):
		log.Error().Err(err).Msg("Backend call failed")
		return "operation failed"
	default:
		return err.Error()
	}
}
