package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/louisbranch/questline/internal/services/narrative/domain/entity"
	"github.com/louisbranch/questline/internal/services/narrative/domain/state"
)

type fakeObjects struct {
	objects map[string][]byte
	getErr  error
	puts    int
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}}
}

func (f *fakeObjects) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	body, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if in.ContentType == nil || *in.ContentType != contentType {
		return nil, errors.New("unexpected content type")
	}
	f.objects[*in.Bucket+"/"+*in.Key] = body
	f.puts++
	return &s3.PutObjectOutput{}, nil
}

func TestLoadMissingObjectReturnsInitial(t *testing.T) {
	store, err := NewWithClient(newFakeObjects(), "worlds", "")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if store.Key() != "world-state.json" {
		t.Fatalf("key = %q, want default", store.Key())
	}
	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, state.Initial()) {
		t.Fatalf("state = %+v, want initial", got)
	}
}

func TestSaveThenLoad(t *testing.T) {
	fake := newFakeObjects()
	store, err := NewWithClient(fake, "worlds", "/campaign-1/world.json")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	want := state.Initial().WithEntityState(entity.Trade, "spice", "Countered")
	if err := store.Save(context.Background(), want); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, ok := fake.objects["worlds/campaign-1/world.json"]; !ok {
		t.Fatalf("objects = %v, want campaign-1/world.json", fake.objects)
	}
	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("state = %+v, want %+v", got, want)
	}
}

func TestLoadSurfacesBackendErrors(t *testing.T) {
	fake := newFakeObjects()
	fake.getErr = errors.New("connection refused")
	store, err := NewWithClient(fake, "worlds", "w.json")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.Load(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := NewWithClient(newFakeObjects(), " ", "k"); err == nil {
		t.Fatal("expected error")
	}
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("expected error")
	}
}
