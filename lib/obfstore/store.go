// Package obfstore keeps the credential and the last snapshot in a single
// local file. The file is obfuscated, not encrypted:
//
//	[1 byte L][L*L bytes filler][gzip(payload) xor keystream(L*L)]
//
// L and the filler come from a generator seeded with a hash of the user id,
// the payload keystream from a generator seeded with L*L. Decoding needs
// nothing but the file itself.
package obfstore

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"learnwatch/lib/courseinfo"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("learnwatch/obfstore")

const (
	minPadding = 32
	maxPadding = 64
)

// State is everything that survives between runs.
type State struct {
	Credential courseinfo.Credential
	Snapshot   courseinfo.Snapshot
}

type Store struct {
	Path string
}

func New(path string) *Store {
	return &Store{Path: path}
}

// encode writes st with the given padding length, drawing filler from the
// filler stream.
func encode(w io.Writer, st State, padding int, filler keystream) error {
	if padding < 0 || padding > 255 {
		return fmt.Errorf("padding length %d does not fit in a byte", padding)
	}

	fillerLen := padding * padding
	head := make([]byte, 1+fillerLen)
	head[0] = byte(padding)
	for i := 1; i < len(head); i++ {
		head[i] = filler.next()
	}
	_, err := w.Write(head)
	if err != nil {
		return err
	}

	var compressed bytes.Buffer
	gz := gzip.NewWriter(&compressed)
	_, err = gz.Write(marshalState(st))
	if err != nil {
		return err
	}
	err = gz.Close()
	if err != nil {
		return err
	}

	payload := compressed.Bytes()
	newKeystream(int64(fillerLen)).xor(payload)
	_, err = w.Write(payload)
	return err
}

func decode(r io.Reader) (State, error) {
	br := bufio.NewReader(r)

	padding, err := br.ReadByte()
	if err != nil {
		return State{}, fmt.Errorf("read padding length: %w", err)
	}
	fillerLen := int64(padding) * int64(padding)
	_, err = io.CopyN(io.Discard, br, fillerLen)
	if err != nil {
		return State{}, fmt.Errorf("skip filler: %w", err)
	}

	payload, err := io.ReadAll(br)
	if err != nil {
		return State{}, err
	}
	newKeystream(fillerLen).xor(payload)

	gz, err := gzip.NewReader(bytes.NewReader(payload))
	if err != nil {
		return State{}, fmt.Errorf("decompress: %w", err)
	}
	defer gz.Close()
	plain, err := io.ReadAll(gz)
	if err != nil {
		return State{}, fmt.Errorf("decompress: %w", err)
	}

	st, err := unmarshalState(plain)
	if err != nil {
		return State{}, fmt.Errorf("deserialize: %w", err)
	}
	return st, nil
}

// Load returns the persisted state. A missing, unreadable or corrupt
// file all mean there is no prior state.
func (s *Store) Load(ctx context.Context) (State, bool) {
	ctx, span := tracer.Start(ctx, "store:Load")
	defer span.End()

	f, err := os.Open(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		slog.DebugContext(ctx, "no stored state", "path", s.Path)
		return State{}, false
	}
	if err != nil {
		span.RecordError(err)
		slog.WarnContext(ctx, "failed to open stored state", "path", s.Path, "err", err)
		return State{}, false
	}
	defer f.Close()

	st, err := decode(f)
	if err != nil {
		span.RecordError(err)
		slog.WarnContext(ctx, "discarding unreadable stored state", "path", s.Path, "err", err)
		return State{}, false
	}

	span.SetAttributes(attribute.Int("items", st.Snapshot.Len()))
	return st, true
}

// Save replaces the stored state. The file is written next to its final
// location and renamed over it, so a failed save leaves the old state.
func (s *Store) Save(ctx context.Context, st State) error {
	ctx, span := tracer.Start(ctx, "store:Save")
	defer span.End()

	span.SetAttributes(attribute.Int("items", st.Snapshot.Len()))

	filler := newKeystream(userSeed(st.Credential.UserId))
	padding := minPadding + filler.intn(maxPadding-minPadding)

	var buf bytes.Buffer
	err := encode(&buf, st, padding, filler)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to encode state")
		return err
	}

	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".*")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create temporary file")
		return err
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(buf.Bytes())
	if err == nil {
		err = tmp.Close()
	} else {
		tmp.Close()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write state")
		return err
	}

	err = os.Rename(tmp.Name(), s.Path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to replace state")
		return err
	}

	slog.DebugContext(ctx, "saved state", "path", s.Path, "credential", st.Credential, "items", st.Snapshot.Len())
	return nil
}

// Remove deletes the stored state, it is not an error if there is none.
func (s *Store) Remove() error {
	err := os.Remove(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
