package render

import (
	"encoding/json"
	"fmt"
	"html/template"
	"sync"

	"github.com/gin-gonic/gin"

	"advent-calendar/internal/door"
)

// BootstrapID is the element id of the flushed bootstrap payload.
const BootstrapID = "advent-data"

const frameKey = "RenderFrame"

// Bootstrap is the per-instance payload handed to the client controller.
// Doors carry metadata only.
type Bootstrap struct {
	PostID       int64       `json:"postId"`
	AjaxURL      string      `json:"ajaxUrl"`
	Nonce        string      `json:"nonce"`
	TestMode     bool        `json:"testMode"`
	AvailableDay int         `json:"availableDay"`
	Doors        []door.Meta `json:"doors"`
}

// Frame accumulates what rendered blocks need at the end of the page. It
// lives for one request.
type Frame struct {
	mu        sync.Mutex
	instances map[string]Bootstrap
	assets    []string
	flushed   bool
}

func NewFrame() *Frame {
	return &Frame{instances: make(map[string]Bootstrap)}
}

// Add records the bootstrap for instanceID, replacing an earlier entry.
func (f *Frame) Add(instanceID string, b Bootstrap) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.instances[instanceID] = b
}

// Enqueue requests an asset for the page. Duplicates are ignored.
func (f *Frame) Enqueue(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.assets {
		if a == id {
			return
		}
	}
	f.assets = append(f.assets, id)
}

func (f *Frame) Assets() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.assets...)
}

func (f *Frame) Instances() map[string]Bootstrap {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]Bootstrap, len(f.instances))
	for k, v := range f.instances {
		out[k] = v
	}
	return out
}

// Flush emits the bootstrap element once. It returns empty output when no
// instance was rendered or the frame was already flushed.
func (f *Frame) Flush() (template.HTML, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.flushed || len(f.instances) == 0 {
		return "", nil
	}
	f.flushed = true

	// encoding/json escapes <, > and & so the payload cannot close the element.
	data, err := json.Marshal(f.instances)
	if err != nil {
		return "", fmt.Errorf("encode bootstrap: %w", err)
	}
	return template.HTML(fmt.Sprintf(`<script type="application/json" id="%s">%s</script>`, BootstrapID, data)), nil
}

// FrameMiddleware attaches a fresh Frame to every request.
func FrameMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(frameKey, NewFrame())
		c.Next()
	}
}

// FrameFrom returns the request frame, creating one if the middleware did not run.
func FrameFrom(c *gin.Context) *Frame {
	if v, ok := c.Get(frameKey); ok {
		if f, ok := v.(*Frame); ok {
			return f
		}
	}
	f := NewFrame()
	c.Set(frameKey, f)
	return f
}

// ResetFrame replaces the request frame with an empty one, dropping blocks
// rendered so far.
func ResetFrame(c *gin.Context) *Frame {
	f := NewFrame()
	c.Set(frameKey, f)
	return f
}
