// Package monitoring serves a read-only view of a running matrix over HTTP.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"reflect"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/rs/xid"
	"github.com/sarchlab/lifematrix/display"
	"github.com/sarchlab/lifematrix/life"
	"github.com/sarchlab/lifematrix/monitoring/web"
	"github.com/sarchlab/lifematrix/scheduler"
	"github.com/sarchlab/lifematrix/sim"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// Snapshot is the state of a scheduler as of its last generation.
type Snapshot struct {
	Name       string
	Generation uint64
	Iteration  uint64
	Now        sim.VTimeInSec
	Population int
	Grid       life.Grid
	Frame      display.Framebuffer
}

// Monitor watches a scheduler through its hooks and serves what it sees.
type Monitor struct {
	portNumber    int
	profileLength time.Duration

	sched *scheduler.Scheduler

	lock     sync.RWMutex
	snapshot Snapshot

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
	generationBar    *ProgressBar

	frames *frameHub

	server *http.Server
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		profileLength: time.Second,
		frames:        newFrameHub(),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterScheduler hooks the monitor to s. Only one scheduler can be
// registered.
func (m *Monitor) RegisterScheduler(s *scheduler.Scheduler) {
	if m.sched != nil {
		log.Panic("monitoring: a scheduler is already registered")
	}

	m.sched = s
	m.generationBar = m.CreateProgressBar(
		s.Name()+" generations", s.GenerationLimit())

	m.lock.Lock()
	m.snapshot = Snapshot{
		Name:       s.Name(),
		Generation: s.Generation(),
		Iteration:  s.Iteration(),
		Now:        s.Now(),
		Population: s.Grid().Population(),
		Grid:       *s.Grid(),
	}
	display.Render(s.Grid(), &m.snapshot.Frame)
	m.lock.Unlock()

	s.AcceptHook(m)
}

// Func copies what the scheduler reports. It runs on the scheduler's
// goroutine.
func (m *Monitor) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case scheduler.HookPosFrameRendered:
		fb := ctx.Item.(*display.Framebuffer)

		m.lock.Lock()
		m.snapshot.Frame = *fb
		m.lock.Unlock()
	case scheduler.HookPosGenerationStepped:
		m.recordGeneration(ctx)
	}
}

func (m *Monitor) recordGeneration(ctx sim.HookCtx) {
	g := ctx.Item.(*life.Grid)
	info := ctx.Detail.(scheduler.GenerationInfo)

	m.lock.Lock()
	m.snapshot.Generation = info.Generation
	m.snapshot.Iteration = info.Iteration
	m.snapshot.Now = info.Now
	m.snapshot.Population = g.Population()
	m.snapshot.Grid = *g
	msg := m.frameMsgLocked()
	m.lock.Unlock()

	m.generationBar.SetFinished(info.Generation)
	if m.generationBar.Done() {
		m.CompleteProgressBar(m.generationBar)
	}

	if m.frames.numClients() > 0 {
		m.frames.broadcast(msg)
	}
}

// Snapshot returns a copy of the latest state.
func (m *Monitor) Snapshot() Snapshot {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return m.snapshot
}

func (m *Monitor) frameMsgLocked() frameMsg {
	return frameMsg{
		Name:       m.snapshot.Name,
		Generation: m.snapshot.Generation,
		Iteration:  m.snapshot.Iteration,
		Now:        float64(m.snapshot.Now),
		Population: m.snapshot.Population,
		Cells:      m.snapshot.Grid.Bits(),
	}
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Handler returns the routes the monitor serves.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	fs := web.GetAssets()
	fServer := http.FileServer(fs)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/snapshot", m.serveSnapshot)
	r.HandleFunc("/api/frame", m.frame)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.HandleFunc("/ws/frames", m.streamFrames)
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)
	r.PathPrefix("/").Handler(fServer)

	return r
}

// StartServer starts the monitor as a web server and returns the port it
// listens on.
func (m *Monitor) StartServer() (int, error) {
	if m.server != nil {
		return 0, errors.New("monitoring: server already started")
	}

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return 0, fmt.Errorf("monitoring: %w", err)
	}

	m.server = &http.Server{
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	port := listener.Addr().(*net.TCPAddr).Port
	fmt.Fprintf(os.Stderr,
		"Monitoring matrix with http://localhost:%d\n", port)

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("monitoring: %v", err)
		}
	}()

	return port, nil
}

// StopServer closes all websocket streams and shuts the server down.
func (m *Monitor) StopServer(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	m.frames.closeAll()

	err := m.server.Shutdown(ctx)
	m.server = nil

	return err
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	snapshot := m.Snapshot()
	fmt.Fprintf(w, "{\"now\":%.10f}", snapshot.Now)
}

func (m *Monitor) serveSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot := m.Snapshot()

	if field := r.URL.Query().Get("field"); field != "" {
		elem, err := m.walkFields(&snapshot, field)
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprintf(w, "Error: %s", err)

			return
		}

		writeJSON(w, elem.Interface())

		return
	}

	view := snapshotView{
		Name:       snapshot.Name,
		Generation: snapshot.Generation,
		Iteration:  snapshot.Iteration,
		Now:        float64(snapshot.Now),
		Population: snapshot.Population,
		Cells:      snapshot.Grid.Bits(),
		Frame:      frameHex(&snapshot.Frame),
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&view)
	serializer.SetMaxDepth(1)

	w.Header().Set("Content-Type", "application/json")

	err := serializer.Serialize(w)
	dieOnErr(err)
}

// snapshotView is the Snapshot with its arrays flattened into strings, which
// is the form goseth can serialize.
type snapshotView struct {
	Name       string
	Generation uint64
	Iteration  uint64
	Now        float64
	Population int

	// Cells holds the grid row by row as '0' and '1' characters.
	Cells string

	// Frame holds one hex digit of brightness per LED, row by row.
	Frame string
}

func frameHex(fb *display.Framebuffer) string {
	const digits = "0123456789abcdef"

	b := make([]byte, 0, life.Rows*life.Cols)

	for _, row := range fb {
		for _, v := range row {
			b = append(b, digits[v&0xf])
		}
	}

	return string(b)
}

func (m *Monitor) frame(w http.ResponseWriter, _ *http.Request) {
	m.lock.RLock()
	msg := m.frameMsgLocked()
	m.lock.RUnlock()

	writeJSON(w, msg)
}

func (m *Monitor) streamFrames(w http.ResponseWriter, r *http.Request) {
	m.lock.RLock()
	first := m.frameMsgLocked()
	m.lock.RUnlock()

	m.frames.serveWS(w, r, first)
}

type fieldFormatError struct {
	field string
}

func (e fieldFormatError) Error() string {
	return "bad field " + e.field
}

type fieldNotFoundError struct {
	field string
}

func (e fieldNotFoundError) Error() string {
	return "field " + e.field + " not found"
}

func (m *Monitor) walkFields(
	root interface{},
	fields string,
) (reflect.Value, error) {
	elem := reflect.ValueOf(root)

	fieldNames := strings.Split(fields, ".")

	for len(fieldNames) > 0 {
		switch elem.Kind() {
		case reflect.Ptr, reflect.Interface:
			elem = elem.Elem()
		case reflect.Struct:
			elem = elem.FieldByName(fieldNames[0])
			if !elem.IsValid() {
				return elem, fieldNotFoundError{fieldNames[0]}
			}

			fieldNames = fieldNames[1:]
		case reflect.Slice, reflect.Array:
			index, err := strconv.Atoi(fieldNames[0])
			if err != nil {
				return elem, fieldFormatError{fieldNames[0]}
			}

			if index < 0 || index >= elem.Len() {
				return elem, fieldNotFoundError{fieldNames[0]}
			}

			elem = elem.Index(index)
			fieldNames = fieldNames[1:]
		default:
			return elem, fieldNotFoundError{fieldNames[0]}
		}
	}

	if elem.Kind() == reflect.Ptr {
		elem = elem.Elem()
	}

	return elem, nil
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]*ProgressBar, len(m.progressBars))
	copy(bars, m.progressBars)
	m.progressBarsLock.Unlock()

	for _, b := range bars {
		b.Lock()
	}

	bytes, err := json.Marshal(bars)

	for _, b := range bars {
		b.Unlock()
	}

	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	time.Sleep(m.profileLength)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
