package dashboard

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kurihiro0119/repo-analyzer/internal/api"
	"github.com/kurihiro0119/repo-analyzer/internal/errutil"
	"github.com/kurihiro0119/repo-analyzer/internal/logging"
	"github.com/kurihiro0119/repo-analyzer/internal/render"
	"github.com/kurihiro0119/repo-analyzer/internal/safe"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Server is the dashboard web UI
type Server struct {
	orch       *Orchestrator
	httpServer *http.Server
}

// NewServer creates the dashboard server listening on addr
func NewServer(addr string, orch *Orchestrator) *Server {
	s := &Server{orch: orch}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           h2c.NewHandler(s.Router(), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router builds the gin engine serving the dashboard routes
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(api.Recovery())
	router.Use(api.RequestLogger())
	router.SetHTMLTemplate(render.Templates())

	router.GET("/", s.index)
	router.GET("/analyze", s.analyze)
	router.GET("/ws", s.stream)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "source": s.orch.source.Name()})
	})
	return router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	logging.Default().Info("Starting dashboard server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) index(c *gin.Context) {
	c.HTML(http.StatusOK, "page", View(State{}))
}

// analyze renders the settled state of a full run
func (s *Server) analyze(c *gin.Context) {
	state, _ := s.orch.Run(c.Request.Context(), State{}, c.Query("repo"), nil)
	c.HTML(http.StatusOK, "page", View(state))
}

type wsInbound struct {
	Repo string `json:"repo"`
}

type wsState struct {
	Phase       string `json:"phase"`
	Input       string `json:"input"`
	Loading     bool   `json:"loading"`
	Error       string `json:"error,omitempty"`
	ShowResults bool   `json:"show_results"`
}

type wsOutbound struct {
	Type   string        `json:"type"`
	State  *wsState      `json:"state,omitempty"`
	Step   *int          `json:"step,omitempty"`
	Region render.Region `json:"region,omitempty"`
	HTML   template.HTML `json:"html,omitempty"`
}

func newWSState(s State) *wsState {
	return &wsState{
		Phase:       s.Phase.String(),
		Input:       s.Input,
		Loading:     s.Loading(),
		Error:       s.Error,
		ShowResults: s.ShowResults(),
	}
}

// wsObserver forwards run events to the connection's writer goroutine
type wsObserver struct {
	ctx     context.Context
	writeCh chan<- wsOutbound
}

func (o *wsObserver) push(out wsOutbound) {
	select {
	case o.writeCh <- out:
	case <-o.ctx.Done():
	}
}

func (o *wsObserver) OnState(s State) {
	o.push(wsOutbound{Type: "state", State: newWSState(s)})
}

func (o *wsObserver) OnStep(index int) {
	o.push(wsOutbound{Type: "step", Step: &index})
}

func (o *wsObserver) OnRegion(region render.Region, report *Report) {
	o.push(wsOutbound{Type: "region", Region: region, HTML: Fragment(region, report)})
}

// stream runs analyses over a websocket, pushing each region as it arrives.
// The repo query parameter starts the first run; later runs are requested
// with {"repo": "owner/name"} messages.
func (s *Server) stream(c *gin.Context) {
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.From(c.Request.Context()).Warn("websocket upgrade failed", "error", err)
		return
	}
	defer safe.Close(conn)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		errutil.HandleError(ctx, "failed to set websocket read deadline", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	writeCh := make(chan wsOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		defer cancel()
		ticker := time.NewTicker(wsPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	submissions := make(chan string, 1)
	go func() {
		defer cancel()
		for {
			var in wsInbound
			if err := conn.ReadJSON(&in); err != nil {
				return
			}
			select {
			case submissions <- in.Repo:
			case <-ctx.Done():
				return
			}
		}
	}()

	obs := &wsObserver{ctx: ctx, writeCh: writeCh}
	state := State{}
	run := func(input string) {
		next, ok := s.orch.Run(ctx, state, input, obs)
		if !ok {
			return
		}
		state = next
		obs.push(wsOutbound{Type: "done", State: newWSState(state)})
	}

	if repo := strings.TrimSpace(c.Query("repo")); repo != "" {
		run(repo)
	}
	for {
		select {
		case <-ctx.Done():
			<-writerDone
			return
		case repo := <-submissions:
			run(repo)
		}
	}
}
