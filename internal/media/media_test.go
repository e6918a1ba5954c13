package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestObjectKey(t *testing.T) {
	tests := []struct {
		name     string
		file     File
		wantExt  string
		wantType string
	}{
		{
			name:     "Extension From Filename",
			file:     File{Name: "Avatar.JPG", Body: strings.NewReader("jpeg bytes")},
			wantExt:  ".jpg",
			wantType: "image/jpeg",
		},
		{
			name:     "Sniffed Content Type",
			file:     File{Name: "avatar", Body: bytes.NewReader(pngHeader)},
			wantExt:  ".png",
			wantType: "image/png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, contentType, err := ObjectKey("customers", tt.file)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(key, "customers/"), key)
			assert.True(t, strings.HasSuffix(key, tt.wantExt), key)
			assert.Equal(t, tt.wantType, contentType)

			// The body is rewound for the uploader.
			pos, err := tt.file.Body.Seek(0, io.SeekCurrent)
			require.NoError(t, err)
			assert.Equal(t, int64(0), pos)
		})
	}
}

func TestObjectKeyIsContentAddressed(t *testing.T) {
	a, _, err := ObjectKey("customers", File{Name: "a.png", Body: strings.NewReader("same")})
	require.NoError(t, err)
	b, _, err := ObjectKey("customers", File{Name: "b.png", Body: strings.NewReader("same")})
	require.NoError(t, err)
	c, _, err := ObjectKey("customers", File{Name: "c.png", Body: strings.NewReader("other")})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

type blockingUploader struct {
	inFlight atomic.Int32
	peak     atomic.Int32
	release  chan struct{}
	calls    atomic.Int32
	mu       sync.Mutex
	keys     []string
}

func (u *blockingUploader) Upload(ctx context.Context, key string, body io.ReadSeeker, size int64,
	opts Options) (Result, error) {
	u.calls.Add(1)
	n := u.inFlight.Add(1)
	defer u.inFlight.Add(-1)
	for {
		peak := u.peak.Load()
		if n <= peak || u.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	u.mu.Lock()
	u.keys = append(u.keys, key)
	u.mu.Unlock()

	select {
	case <-u.release:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	return Result{Key: key, URL: "http://cdn/" + key, Size: size}, nil
}

func TestOffloaderLimitsConcurrency(t *testing.T) {
	u := &blockingUploader{release: make(chan struct{})}
	o := NewOffloader(u, 2)

	var wg sync.WaitGroup
	for i := range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			body := strings.NewReader(strings.Repeat("x", i+1))
			_, err := o.Upload(context.Background(), "customers", File{Name: "f.txt", Body: body, Size: body.Size()})
			assert.NoError(t, err)
		}()
	}

	require.Eventually(t, func() bool { return u.inFlight.Load() == 2 }, time.Second, 5*time.Millisecond)
	close(u.release)
	wg.Wait()

	assert.Equal(t, int32(5), u.calls.Load())
	assert.Equal(t, int32(2), u.peak.Load())
}

func TestOffloaderWaitHonoursContext(t *testing.T) {
	u := &blockingUploader{release: make(chan struct{})}
	o := NewOffloader(u, 1)

	go func() {
		_, _ = o.Upload(context.Background(), "customers", File{Name: "a.txt", Body: strings.NewReader("a"), Size: 1})
	}()
	require.Eventually(t, func() bool { return u.inFlight.Load() == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := o.Upload(ctx, "customers", File{Name: "b.txt", Body: strings.NewReader("b"), Size: 1})

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, int32(1), u.calls.Load())
	close(u.release)
}

func TestOffloaderReturnsUploaderResult(t *testing.T) {
	u := &blockingUploader{release: make(chan struct{})}
	close(u.release)
	o := NewOffloader(u, 0)

	res, err := o.Upload(context.Background(), "dishes", File{Name: "menu.png", Body: bytes.NewReader(pngHeader), Size: int64(len(pngHeader))})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.URL, "http://cdn/dishes/"))
	assert.Equal(t, int64(len(pngHeader)), res.Size)
}
