package loader

import (
	"bytes"
	"context"

	"github.com/pkg/errors"
	"github.com/viant/afs"
	"github.com/viant/afs/file"

	"procAssign/internal/procassign"
)

// Store reads instances and assignments from any afs URL (file://, mem://, ...).
type Store struct {
	fs afs.Service
}

func NewStore(fs afs.Service) *Store {
	if fs == nil {
		fs = afs.New()
	}
	return &Store{fs: fs}
}

func (s *Store) download(ctx context.Context, URL string) ([]byte, error) {
	exists, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check %s", URL)
	}
	if !exists {
		return nil, errors.Errorf("not found: %s", URL)
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", URL)
	}
	return data, nil
}

func (s *Store) LoadInstance(ctx context.Context, URL string) (*procassign.Instance, error) {
	data, err := s.download(ctx, URL)
	if err != nil {
		return nil, err
	}
	inst, err := ParseInstance(data)
	if err != nil {
		return nil, errors.Wrap(err, URL)
	}
	return inst, nil
}

func (s *Store) LoadAssignment(ctx context.Context, URL string, inst *procassign.Instance) (*procassign.Assignment, error) {
	data, err := s.download(ctx, URL)
	if err != nil {
		return nil, err
	}
	a, err := ParseAssignment(data, inst)
	if err != nil {
		return nil, errors.Wrap(err, URL)
	}
	return a, nil
}

// SaveAssignment writes machines in the single line format read by LoadAssignment.
func (s *Store) SaveAssignment(ctx context.Context, URL string, machines []int) error {
	if err := s.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(FormatAssignment(machines))); err != nil {
		return errors.Wrapf(err, "failed to save assignment to %s", URL)
	}
	return nil
}
