package backend

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/deon-gracias/rag/internal/domain"
	"github.com/deon-gracias/rag/internal/schema"
)

const defaultContentType = "application/octet-stream"

// CreateAndUpload creates a session from the given documents. The quality
// value is passed through untouched.
func (c *Client) CreateAndUpload(ctx context.Context, files []*domain.File, quality domain.Quality) (_ *domain.Session, err error) {
	const op = "create_and_upload"

	if !quality.Valid() {
		return nil, fmt.Errorf("%w: got %q", domain.ErrInvalidQuality, quality)
	}
	if len(files) == 0 {
		return nil, domain.ErrNoFiles
	}

	defer c.observe(op, time.Now(), &err)

	parts, err := c.openParts(files)
	if err != nil {
		return nil, err
	}
	defer parts.Close()

	body, err := c.do(ctx, op, c.uploadTimeout, func(r *resty.Request) (*resty.Response, error) {
		r.SetFormData(map[string]string{"quality": string(quality)})
		parts.attach(r)
		return r.Post("/session/create_and_upload")
	})
	if err != nil {
		return nil, err
	}

	wire, err := schema.Decode[schema.SessionEnvelope](body, schema.SessionEnvelopeShape)
	if err != nil {
		return nil, err
	}
	if !wire.OK || wire.Data == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrRejected)
	}

	s := wire.Data.ToDomain()
	return &s, nil
}

// UploadToSession adds documents to an existing session
func (c *Client) UploadToSession(ctx context.Context, name string, files []*domain.File) (err error) {
	const op = "upload_to_session"

	if len(files) == 0 {
		return domain.ErrNoFiles
	}

	defer c.observe(op, time.Now(), &err)

	parts, err := c.openParts(files)
	if err != nil {
		return err
	}
	defer parts.Close()

	body, err := c.do(ctx, op, c.uploadTimeout, func(r *resty.Request) (*resty.Response, error) {
		parts.attach(r.SetPathParam("name", name))
		return r.Post("/session/{name}/upload")
	})
	if err != nil {
		return err
	}

	wire, err := schema.Decode[schema.OK](body, schema.OKShape)
	if err != nil {
		return err
	}
	if !wire.OK {
		return fmt.Errorf("%s: %w", op, ErrRejected)
	}
	return nil
}

type filePart struct {
	file   *domain.File
	reader io.Reader
}

type multipartFiles struct {
	parts    []filePart
	closers  []io.Closer
	progress io.WriteCloser
}

// openParts opens every staged file. Nothing stays open on error.
func (c *Client) openParts(files []*domain.File) (*multipartFiles, error) {
	m := &multipartFiles{}

	var total int64
	for _, f := range files {
		total += f.Size
	}
	if c.progress != nil {
		m.progress = c.progress(total)
	}

	for _, f := range files {
		rc, err := f.Open()
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
		}
		m.closers = append(m.closers, rc)

		var r io.Reader = rc
		if m.progress != nil {
			r = io.TeeReader(rc, m.progress)
		}
		m.parts = append(m.parts, filePart{file: f, reader: r})
	}
	return m, nil
}

func (m *multipartFiles) attach(r *resty.Request) {
	for _, p := range m.parts {
		contentType := p.file.ContentType
		if contentType == "" {
			contentType = defaultContentType
		}
		r.SetMultipartField("files", p.file.Name, contentType, p.reader)
	}
}

func (m *multipartFiles) Close() error {
	for _, c := range m.closers {
		c.Close()
	}
	if m.progress != nil {
		m.progress.Close()
	}
	return nil
}
