package device

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sys/cpu"

	"github.com/hupe1980/lanegrep/internal/resource"
)

var (
	// ErrOutOfMemory is returned when an allocation exceeds the device budget.
	ErrOutOfMemory = errors.New("device: out of memory")
	// ErrFreed is returned when a freed buffer is used.
	ErrFreed = errors.New("device: buffer already freed")
	// ErrTransferSize is returned when a copy does not fit the destination.
	ErrTransferSize = errors.New("device: transfer exceeds buffer size")
	// ErrLaunchFailed is returned when a lane panics.
	ErrLaunchFailed = errors.New("device: launch failed")
	// ErrClosed is returned when the device has been closed.
	ErrClosed = errors.New("device: closed")
)

// Config configures the device.
type Config struct {
	// MemoryLimitBytes bounds device memory. 0 means unlimited.
	MemoryLimitBytes int64
	// TransferBytesPerSec paces host to device copies. 0 means unlimited.
	TransferBytesPerSec int64
	// MaxGroups bounds concurrently running lane groups.
	// Defaults to runtime.GOMAXPROCS(0).
	MaxGroups int
}

// Properties describes the device.
type Properties struct {
	Name        string
	Lanes       int
	MemoryBytes int64
	Features    []string
}

// Device is the local accelerator. There is exactly one, device 0.
type Device struct {
	cfg   Config
	rc    *resource.Controller
	props Properties

	mu     sync.Mutex
	live   map[*Buffer]struct{}
	closed bool
}

// Open initialises the device.
func Open(cfg Config) (*Device, error) {
	if cfg.MemoryLimitBytes < 0 || cfg.TransferBytesPerSec < 0 || cfg.MaxGroups < 0 {
		return nil, fmt.Errorf("device: invalid config %+v", cfg)
	}
	if cfg.MaxGroups == 0 {
		cfg.MaxGroups = runtime.GOMAXPROCS(0)
	}

	return &Device{
		cfg: cfg,
		rc: resource.NewController(resource.Config{
			MemoryLimitBytes:    cfg.MemoryLimitBytes,
			TransferBytesPerSec: cfg.TransferBytesPerSec,
		}),
		props: Properties{
			Name:        fmt.Sprintf("%s/%s lanes", runtime.GOOS, runtime.GOARCH),
			Lanes:       cfg.MaxGroups,
			MemoryBytes: cfg.MemoryLimitBytes,
			Features:    features(),
		},
		live: make(map[*Buffer]struct{}),
	}, nil
}

// Properties returns the device description.
func (d *Device) Properties() Properties {
	return d.props
}

// MemoryUsage returns the bytes currently allocated on the device.
func (d *Device) MemoryUsage() int64 {
	return d.rc.MemoryUsage()
}

// PeakMemoryUsage returns the device memory high-water mark.
func (d *Device) PeakMemoryUsage() int64 {
	return d.rc.PeakMemoryUsage()
}

// Close frees every buffer still allocated. It is idempotent.
func (d *Device) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	live := d.live
	d.live = nil
	d.mu.Unlock()

	var errs []error
	for b := range live {
		errs = append(errs, b.release())
	}
	return errors.Join(errs...)
}

func features() []string {
	var fs []string
	switch runtime.GOARCH {
	case "amd64":
		if cpu.X86.HasSSE42 {
			fs = append(fs, "sse4.2")
		}
		if cpu.X86.HasAVX2 {
			fs = append(fs, "avx2")
		}
		if cpu.X86.HasAVX512BW {
			fs = append(fs, "avx512bw")
		}
	case "arm64":
		if cpu.ARM64.HasASIMD {
			fs = append(fs, "asimd")
		}
		if cpu.ARM64.HasSVE {
			fs = append(fs, "sve")
		}
	}
	return fs
}
