package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/deon-gracias/rag/internal/domain"
)

func (a *app) sessions(ctx context.Context) error {
	if err := a.ws.Refresh(ctx); err != nil {
		return err
	}
	a.out.sessions(a.ws.Registry().All())
	return nil
}

func (a *app) newSession(ctx context.Context) error {
	s, err := a.client.CreateSession(ctx)
	if err != nil {
		return err
	}
	a.out.success("Session created", s.Name)
	return nil
}

func (a *app) upload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	quality := fs.String("quality", a.cfg.Upload.DefaultQuality, "processing quality: fast or hi-res")
	noChat := fs.Bool("no-chat", false, "do not open the chat after uploading")
	if err := fs.Parse(args); err != nil {
		return usageErr(err.Error())
	}
	if fs.NArg() == 0 {
		return usageErr("upload needs at least one file")
	}

	q, err := domain.ParseQuality(*quality)
	if err != nil {
		return err
	}

	files, err := a.stage(fs.Args())
	if err != nil {
		return err
	}

	up := a.ws.NewUpload()
	up.Open()
	defer up.Close()

	if added := up.AddFiles(files...); added < len(files) {
		a.out.warn(fmt.Sprintf("%d duplicate file name(s) skipped", len(files)-added))
	}
	if err := up.SetQuality(q); err != nil {
		return err
	}

	session, err := up.Submit(ctx)
	if err != nil {
		return err
	}

	if *noChat {
		fmt.Fprintln(a.out.w, session.Name)
		return nil
	}
	return a.chat(ctx, session.Name)
}

func (a *app) attach(ctx context.Context, name string, paths []string) error {
	files, err := a.stage(paths)
	if err != nil {
		return err
	}
	return a.ws.Attach(ctx, name, files)
}

func (a *app) delete(ctx context.Context, arg string) error {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 1 {
		return usageErr(fmt.Sprintf("invalid session id %q", arg))
	}

	res, err := a.ws.Delete(ctx, id)
	if err != nil {
		return err
	}

	name := strconv.FormatInt(id, 10)
	if res.Session != nil {
		name = res.Session.Name
	}
	a.out.success("Session deleted", name)
	return nil
}

func (a *app) health(ctx context.Context) error {
	msg, err := a.client.Health(ctx)
	if err != nil {
		return err
	}
	a.out.success("Backend", msg)
	return nil
}

// stage turns paths into upload files, dropping unsupported types
func (a *app) stage(paths []string) ([]*domain.File, error) {
	files, skipped, err := stageFiles(paths, a.cfg.Upload.AcceptedTypes)
	if err != nil {
		return nil, err
	}
	for _, s := range skipped {
		a.out.warn(fmt.Sprintf("skipping %s: %s", s.Path, s.Reason))
	}
	if len(files) == 0 {
		return nil, domain.ErrNoFiles
	}
	return files, nil
}
