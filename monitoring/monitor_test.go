package monitoring_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gorilla/websocket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/lifematrix/display"
	"github.com/sarchlab/lifematrix/life"
	"github.com/sarchlab/lifematrix/monitoring"
	"github.com/sarchlab/lifematrix/scheduler"
	"github.com/sarchlab/lifematrix/sim"
)

type nopDisplay struct{}

func (nopDisplay) Scan(sim.Freq) error { return nil }

type nopHeartbeat struct{}

func (nopHeartbeat) Toggle() {}

func get(url string) (int, string) {
	rsp, err := http.Get(url)
	Expect(err).ToNot(HaveOccurred())
	defer rsp.Body.Close()

	body, err := io.ReadAll(rsp.Body)
	Expect(err).ToNot(HaveOccurred())

	return rsp.StatusCode, string(body)
}

type frame struct {
	Name       string  `json:"name"`
	Generation uint64  `json:"generation"`
	Iteration  uint64  `json:"iteration"`
	Now        float64 `json:"now"`
	Population int     `json:"population"`
	Cells      string  `json:"cells"`
}

var _ = Describe("Monitor", func() {
	var (
		s      *scheduler.Scheduler
		m      *monitoring.Monitor
		server *httptest.Server
	)

	BeforeEach(func() {
		s = scheduler.MakeBuilder().
			WithFramebuffer(&display.Framebuffer{}).
			WithDisplay(nopDisplay{}).
			WithHeartbeat(nopHeartbeat{}).
			WithInitialTimeout(0).
			WithGenerationLimit(4).
			Build("Matrix")

		m = monitoring.NewMonitor()
		m.RegisterScheduler(s)

		server = httptest.NewServer(m.Handler())
	})

	AfterEach(func() {
		server.Close()
	})

	It("should start from the seed", func() {
		snapshot := m.Snapshot()

		Expect(snapshot.Name).To(Equal("Matrix"))
		Expect(snapshot.Generation).To(BeZero())
		Expect(snapshot.Grid).To(Equal(life.Seed()))
		Expect(snapshot.Population).To(Equal(21))
	})

	It("should refuse a second scheduler", func() {
		Expect(func() { m.RegisterScheduler(s) }).To(Panic())
	})

	It("should follow the scheduler", func() {
		s.RunIterations(9)

		snapshot := m.Snapshot()
		g := life.Seed()
		g.Step()
		g.Step()

		Expect(snapshot.Generation).To(Equal(uint64(2)))
		Expect(snapshot.Iteration).To(Equal(uint64(8)))
		Expect(snapshot.Grid).To(Equal(g))
		Expect(snapshot.Population).To(Equal(26))

		expectedFrame := display.Framebuffer{}
		seed := life.Seed()
		seed.Step()
		display.Render(&seed, &expectedFrame)
		Expect(snapshot.Frame).To(Equal(expectedFrame))
	})

	It("should serve the current time", func() {
		s.RunIterations(9)

		code, body := get(server.URL + "/api/now")

		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(Equal(`{"now":0.0080000000}`))
	})

	It("should serve the current frame", func() {
		s.RunIterations(1)

		code, body := get(server.URL + "/api/frame")
		Expect(code).To(Equal(http.StatusOK))

		f := frame{}
		Expect(json.Unmarshal([]byte(body), &f)).To(Succeed())

		g := life.Seed()
		g.Step()
		Expect(f.Generation).To(Equal(uint64(1)))
		Expect(f.Population).To(Equal(18))
		Expect(f.Cells).To(Equal(g.Bits()))
	})

	It("should serialize the snapshot", func() {
		s.RunIterations(1)

		code, body := get(server.URL + "/api/snapshot")

		Expect(code).To(Equal(http.StatusOK))
		Expect(json.Valid([]byte(body))).To(BeTrue())

		g := life.Seed()
		g.Step()
		Expect(body).To(ContainSubstring(g.Bits()))
	})

	It("should serialize a field of the snapshot", func() {
		code, body := get(server.URL + "/api/snapshot?field=Population")

		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(Equal("21"))
	})

	It("should serialize a row of the grid", func() {
		s.RunIterations(1)

		code, body := get(server.URL + "/api/snapshot?field=Grid.3")
		Expect(code).To(Equal(http.StatusOK))

		var row [life.Cols]uint8
		Expect(json.Unmarshal([]byte(body), &row)).To(Succeed())

		g := life.Seed()
		g.Step()
		Expect(row).To(Equal(g[3]))
	})

	It("should report unknown fields", func() {
		code, body := get(server.URL + "/api/snapshot?field=Nope")

		Expect(code).To(Equal(http.StatusNotFound))
		Expect(body).To(ContainSubstring("Nope"))
	})

	It("should report generation progress", func() {
		s.RunIterations(9)

		code, body := get(server.URL + "/api/progress")
		Expect(code).To(Equal(http.StatusOK))

		var bars []map[string]any
		Expect(json.Unmarshal([]byte(body), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0]["name"]).To(Equal("Matrix generations"))
		Expect(bars[0]["total"]).To(BeNumerically("==", 4))
		Expect(bars[0]["finished"]).To(BeNumerically("==", 2))
	})

	It("should complete the progress bar at the generation limit", func() {
		s.RunIterations(25)
		Expect(s.Generation()).To(Equal(uint64(4)))

		code, body := get(server.URL + "/api/progress")
		Expect(code).To(Equal(http.StatusOK))

		var bars []map[string]any
		Expect(json.Unmarshal([]byte(body), &bars)).To(Succeed())
		Expect(bars).To(BeEmpty())
	})

	It("should report resource usage", func() {
		code, body := get(server.URL + "/api/resource")
		Expect(code).To(Equal(http.StatusOK))

		rsp := map[string]float64{}
		Expect(json.Unmarshal([]byte(body), &rsp)).To(Succeed())
		Expect(rsp).To(HaveKey("cpu_percent"))
		Expect(rsp["memory_size"]).To(BeNumerically(">", 0))
	})

	It("should serve the page", func() {
		code, body := get(server.URL + "/")

		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(HavePrefix("<!DOCTYPE html>"))
	})

	It("should stream frames", func() {
		url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/frames"

		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		Expect(err).ToNot(HaveOccurred())
		defer conn.Close()

		f := frame{}
		Expect(conn.ReadJSON(&f)).To(Succeed())
		Expect(f.Generation).To(BeZero())
		seed := life.Seed()
		Expect(f.Cells).To(Equal(seed.Bits()))

		s.RunIterations(1)

		Expect(conn.ReadJSON(&f)).To(Succeed())
		Expect(f.Name).To(Equal("Matrix"))
		Expect(f.Generation).To(Equal(uint64(1)))
		Expect(f.Population).To(Equal(18))
	})
})

var _ = Describe("Monitor server", func() {
	It("should start and stop", func() {
		m := monitoring.NewMonitor()

		port, err := m.StartServer()
		Expect(err).ToNot(HaveOccurred())
		Expect(port).To(BeNumerically(">", 0))

		_, err = m.StartServer()
		Expect(err).To(HaveOccurred())

		Expect(m.StopServer(context.Background())).To(Succeed())
	})
})
