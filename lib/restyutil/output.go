package restyutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

// Output receives a rendered http exchange under a unique id.
type Output interface {
	Write(id string, contents string)
}

type FilesystemOutput struct {
	directory string
}

// NewFilesystemOutput writes every message as a file in dir, the directory
// is emptied first.
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	err := os.RemoveAll(dir)
	if err != nil {
		return FilesystemOutput{}, err
	}
	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{directory: dir}, nil
}

func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, id), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write message info file", "id", id, "err", err)
	}
}

// MemoryOutput keeps messages in memory.
type MemoryOutput struct {
	mu       sync.Mutex
	messages map[string]string
}

func (o *MemoryOutput) Write(id string, contents string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.messages == nil {
		o.messages = map[string]string{}
	}
	o.messages[id] = contents
}

func (o *MemoryOutput) Messages() map[string]string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[string]string, len(o.messages))
	for k, v := range o.messages {
		out[k] = v
	}
	return out
}

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

func messageId(n uint64, res *resty.Response) string {
	path := "root"
	if res.Request.RawRequest != nil && res.Request.RawRequest.URL.Path != "" {
		path = unsafeFilename.ReplaceAllString(res.Request.RawRequest.URL.Path, "_")
	}
	return fmt.Sprintf("%04d%s.txt", n, path)
}

// DumpResponses writes every response the client receives to output.
func DumpResponses(client *resty.Client, output Output) {
	var idcounter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		n := atomic.AddUint64(&idcounter, 1)
		output.Write(messageId(n, res), formatHttpMessage(res))
		return nil
	})
}
