package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

type apiError struct {
	code string
	msg  string
}

func (e *apiError) Error() string                 { return e.msg }
func (e *apiError) ErrorCode() string             { return e.code }
func (e *apiError) ErrorMessage() string          { return e.msg }
func (e *apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

var (
	errNoSuchKey = &apiError{code: "NoSuchKey", msg: "no such key"}
	errNotFound  = &apiError{code: "NotFound", msg: "not found"}
)

type s3Object struct {
	data        []byte
	contentType string
}

// fakeS3 is an in-memory bucket.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]s3Object
	puts    int

	getErr    error
	putErr    error
	deleteErr error
	headErr   error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string]s3Object)}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[*in.Key]
	if !ok {
		return nil, errNoSuchKey
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(obj.data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	f.puts++
	f.mu.Unlock()
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	obj := s3Object{data: data}
	if in.ContentType != nil {
		obj.contentType = *in.ContentType
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[*in.Key] = obj
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[*in.Key]; !ok {
		return nil, errNotFound
	}
	return &s3.HeadObjectOutput{}, nil
}

func TestS3SaveAndLoad(t *testing.T) {
	fake := newFakeS3()
	store := NewS3(fake, "tunes", "/retro/")
	ctx := context.Background()

	p := ArtifactPath("abc")
	n, err := Save(ctx, store, p, bytes.NewBufferString("MThd..."))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if n != 7 {
		t.Errorf("Save wrote %d bytes, want 7", n)
	}

	obj, ok := fake.objects["retro/compositions/abc.mid"]
	if !ok {
		t.Fatalf("object not stored under prefixed key; have %v", fake.objects)
	}
	if obj.contentType != MIDIContentType {
		t.Errorf("content type = %q, want %q", obj.contentType, MIDIContentType)
	}

	got, err := Load(ctx, store, p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != "MThd..." {
		t.Errorf("Load = %q", got)
	}
}

func TestS3WriteUploadsOnClose(t *testing.T) {
	fake := newFakeS3()
	store := NewS3(fake, "b", "")
	ctx := context.Background()

	w, err := store.Write(ctx, "notes.txt")
	if err != nil {
		t.Fatal(err)
	}
	io.WriteString(w, "part one, ")
	io.WriteString(w, "part two")
	if fake.puts != 0 {
		t.Fatal("upload must wait for Close")
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if fake.puts != 1 {
		t.Errorf("puts = %d, want 1", fake.puts)
	}
	if obj := fake.objects["notes.txt"]; string(obj.data) != "part one, part two" || obj.contentType != "" {
		t.Errorf("object = %+v", obj)
	}
	if _, err := w.Write([]byte("late")); !errors.Is(err, os.ErrClosed) {
		t.Errorf("Write after Close = %v", err)
	}
}

func TestS3ReadNotExist(t *testing.T) {
	store := NewS3(newFakeS3(), "b", "")
	_, err := store.Read(context.Background(), "missing.mid")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestS3ReadOtherError(t *testing.T) {
	fake := newFakeS3()
	fake.getErr = errors.New("network timeout")
	_, err := NewS3(fake, "b", "p").Read(context.Background(), "x")
	if err == nil || errors.Is(err, os.ErrNotExist) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestS3Exists(t *testing.T) {
	fake := newFakeS3()
	store := NewS3(fake, "b", "")
	ctx := context.Background()

	if ok, err := store.Exists(ctx, "x.mid"); err != nil || ok {
		t.Fatalf("Exists missing = %v, %v", ok, err)
	}
	fake.objects["x.mid"] = s3Object{data: []byte("x")}
	if ok, err := store.Exists(ctx, "x.mid"); err != nil || !ok {
		t.Fatalf("Exists present = %v, %v", ok, err)
	}

	fake.headErr = errors.New("network failure")
	if _, err := store.Exists(ctx, "x.mid"); err == nil {
		t.Fatal("expected error")
	}
}

func TestS3Delete(t *testing.T) {
	fake := newFakeS3()
	store := NewS3(fake, "b", "")
	ctx := context.Background()

	if err := store.Delete(ctx, "ghost"); err != nil {
		t.Fatal(err)
	}
	fake.objects["tmp"] = s3Object{}
	if err := store.Delete(ctx, "tmp"); err != nil {
		t.Fatal(err)
	}
	if _, ok := fake.objects["tmp"]; ok {
		t.Fatal("object should be gone")
	}

	fake.deleteErr = errors.New("access denied")
	if err := store.Delete(ctx, "tmp"); err == nil {
		t.Fatal("expected error")
	}
}

func TestS3SaveUploadError(t *testing.T) {
	fake := newFakeS3()
	fake.putErr = errors.New("upload failed")
	store := NewS3(fake, "b", "")

	_, err := Save(context.Background(), store, ArtifactPath("x"), bytes.NewBufferString("data"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, fake.putErr) {
		t.Errorf("error %v does not wrap the upload error", err)
	}
	if len(fake.objects) != 0 {
		t.Errorf("objects left behind: %v", fake.objects)
	}
}

func TestIsS3NotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"NoSuchKey", errNoSuchKey, true},
		{"NotFound", errNotFound, true},
		{"other api error", &apiError{code: "AccessDenied", msg: "denied"}, false},
		{"plain error", errors.New("timeout"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isS3NotFound(tt.err); got != tt.want {
				t.Fatalf("isS3NotFound(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
