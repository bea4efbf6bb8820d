package obfstore

import (
	"bytes"
	"context"
	"io"
	"learnwatch/lib/courseinfo"
	"learnwatch/lib/testutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

func randomState(t testing.TB) State {
	r := func(n int) string { return testutil.RandomString(t, n) }

	course := courseinfo.CourseRef{Id: r(5), Title: r(12)}
	other := courseinfo.CourseRef{Id: r(5), Title: "操作系统"}

	return State{
		Credential: courseinfo.Credential{UserId: r(10), Password: r(16)},
		Snapshot: courseinfo.Snapshot{Items: []courseinfo.Item{
			courseinfo.Note{
				Base:      courseinfo.Base{Course: course, Url: "https://" + r(20), Title: r(8), Important: true},
				Publisher: r(6),
				Date:      "2012-10-20",
			},
			courseinfo.FileInfo{
				Base:        courseinfo.Base{Course: course, Url: "https://" + r(20), Title: r(8)},
				Description: "",
				Date:        "2012-09-10",
			},
			courseinfo.Homework{
				Base:      courseinfo.Base{Course: other, Url: "https://" + r(20), Title: "第一次作业", Important: true},
				StartDate: "2012-09-20",
				Deadline:  "2012-09-27",
			},
			courseinfo.Discuss{
				Base:       courseinfo.Base{Course: other, Url: "https://" + r(20), Title: r(8)},
				Publisher:  r(6),
				ReplyCount: "3",
				Date:       "2012-09-18 09:30",
			},
		}},
	}
}

func TestRoundTripEveryPadding(t *testing.T) {
	states := map[string]State{
		"items": randomState(t),
		"empty snapshot": {
			Credential: courseinfo.Credential{UserId: "2011011234", Password: "hunter2"},
		},
	}

	for name, st := range states {
		for padding := minPadding; padding < maxPadding; padding++ {
			var buf bytes.Buffer
			err := encode(&buf, st, padding, newKeystream(userSeed(st.Credential.UserId)))
			if err != nil {
				t.Fatal(err)
			}
			require.Equal(t, byte(padding), buf.Bytes()[0])

			decoded, err := decode(&buf)
			if err != nil {
				t.Fatalf("%s, padding %d: %v", name, padding, err)
			}
			if diff := cmp.Diff(st, decoded, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("%s, padding %d: %s", name, padding, diff)
			}
		}
	}
}

func TestLayout(t *testing.T) {
	st := randomState(t)
	path := filepath.Join(t.TempDir(), "userdata.dat")
	store := New(path)

	err := store.Save(context.Background(), st)
	if err != nil {
		t.Fatal(err)
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// the header is fully determined by the user id
	filler := newKeystream(userSeed(st.Credential.UserId))
	padding := minPadding + filler.intn(maxPadding-minPadding)
	require.Equal(t, byte(padding), contents[0])

	fillerLen := padding * padding
	require.Greater(t, len(contents), 1+fillerLen)
	for i := 1; i <= fillerLen; i++ {
		require.Equal(t, filler.next(), contents[i], "filler byte %d", i)
	}

	// the payload is gzip once the keystream is removed
	payload := append([]byte(nil), contents[1+fillerLen:]...)
	newKeystream(int64(fillerLen)).xor(payload)
	require.Equal(t, []byte{0x1f, 0x8b}, payload[:2])

	gz, err := gzip.NewReader(bytes.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	plain, err := io.ReadAll(gz)
	if err != nil {
		t.Fatal(err)
	}
	require.False(t, bytes.Contains(contents, []byte(st.Credential.Password)))
	require.True(t, bytes.Contains(plain, []byte(st.Credential.Password)))
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "userdata.dat")
	store := New(path)

	_, ok := store.Load(ctx)
	require.False(t, ok)

	first := randomState(t)
	err := store.Save(ctx, first)
	if err != nil {
		t.Fatal(err)
	}
	loaded, ok := store.Load(ctx)
	require.True(t, ok)
	if diff := cmp.Diff(first, loaded, cmpopts.EquateEmpty()); diff != "" {
		t.Fatal(diff)
	}

	// saving overwrites, it never merges
	second := State{Credential: first.Credential}
	err = store.Save(ctx, second)
	if err != nil {
		t.Fatal(err)
	}
	loaded, ok = store.Load(ctx)
	require.True(t, ok)
	require.Equal(t, 0, loaded.Snapshot.Len())

	require.NoError(t, store.Remove())
	_, ok = store.Load(ctx)
	require.False(t, ok)
	require.NoError(t, store.Remove())
}

func TestLoadCorrupt(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	var valid bytes.Buffer
	err := encode(&valid, randomState(t), 40, newKeystream(1))
	if err != nil {
		t.Fatal(err)
	}

	flipped := append([]byte(nil), valid.Bytes()...)
	for i := 1 + 40*40; i < len(flipped); i++ {
		flipped[i] ^= 0xff
	}

	cases := map[string][]byte{
		"empty":            {},
		"header only":      {40},
		"truncated filler": append([]byte{40}, make([]byte, 100)...),
		"no payload":       valid.Bytes()[:1+40*40],
		"truncated":        valid.Bytes()[:valid.Len()-8],
		"flipped payload":  flipped,
		"plain text":       []byte("userid=2011011234&userpass=hunter2"),
	}

	for name, contents := range cases {
		path := filepath.Join(dir, name)
		err := os.WriteFile(path, contents, 0600)
		if err != nil {
			t.Fatal(err)
		}
		_, ok := New(path).Load(ctx)
		require.False(t, ok, name)
	}
}
