package relay

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type ServerOption func(s *Server)

func ServerAddress(address string) ServerOption {
	return func(s *Server) { s.address = address }
}

// ServerTLS serves wss:// with the given key pair.
func ServerTLS(certFile, keyFile string) ServerOption {
	return func(s *Server) {
		s.certFile = &certFile
		s.keyFile = &keyFile
	}
}

// Server is a single node relay. Published messages are fanned out to every
// other connection subscribed to the topic; nothing is persisted.
type Server struct {
	httpServer *http.Server
	address    string
	certFile   *string
	keyFile    *string

	wsUpgrader websocket.Upgrader

	mux  sync.Mutex
	subs map[string]map[*serverConn]struct{}
}

type serverConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *serverConn) write(frame Frame) error {
	raw, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, raw)
}

func NewServer(opts ...ServerOption) *Server {
	server := &Server{
		subs: make(map[string]map[*serverConn]struct{}),
	}

	for _, opt := range opts {
		opt(server)
	}

	return server
}

func (s *Server) ListenAndServe() error {
	if s.httpServer != nil {
		return errors.New("server already started")
	}

	serverMux := http.NewServeMux()
	serverMux.Handle("/", s)

	s.httpServer = &http.Server{
		Addr:    s.address,
		Handler: serverMux,
	}

	if s.certFile != nil && s.keyFile != nil {
		return s.httpServer.ListenAndServeTLS(*s.certFile, *s.keyFile)
	} else if !(s.certFile == nil && s.keyFile == nil) {
		return errors.New("both certFile and keyFile must be specified")
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return errors.New("server not started")
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.httpServer = nil
	return nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := s.wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.Errorf("failed to upgrade websocket: %v", err)
		return
	}
	conn := &serverConn{conn: c}
	defer func() {
		s.dropConn(conn)
		c.Close()
	}()

	for {
		_, raw, err := c.ReadMessage()
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return
		} else if err != nil {
			logrus.Debugf("relay: connection closed: %v", err)
			return
		}

		frame, err := ParseFrame(raw)
		if err != nil {
			logrus.Warnf("relay: malformed frame: %v", err)
			continue
		}

		resp := Frame{ID: frame.ID, Result: "OK"}
		switch frame.Method {
		case MethodSubscribe:
			s.subscribe(frame.Topic, conn)
		case MethodUnsubscribe:
			s.unsubscribe(frame.Topic, conn)
		case MethodPublish:
			if frame.Message == nil || frame.Message.Topic == "" {
				resp = Frame{ID: frame.ID, Error: "missing message topic"}
				break
			}
			s.fanOut(*frame.Message, conn)
		default:
			resp = Frame{ID: frame.ID, Error: "unsupported method"}
		}
		if frame.ID == "" {
			continue
		}
		if err := conn.write(resp); err != nil {
			logrus.Errorf("relay: failed to write response: %v", err)
			return
		}
	}
}

func (s *Server) subscribe(topic string, conn *serverConn) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.subs[topic] == nil {
		s.subs[topic] = make(map[*serverConn]struct{})
	}
	s.subs[topic][conn] = struct{}{}
}

func (s *Server) unsubscribe(topic string, conn *serverConn) {
	s.mux.Lock()
	defer s.mux.Unlock()
	delete(s.subs[topic], conn)
}

func (s *Server) dropConn(conn *serverConn) {
	s.mux.Lock()
	defer s.mux.Unlock()
	for _, conns := range s.subs {
		delete(conns, conn)
	}
}

func (s *Server) fanOut(msg Message, from *serverConn) {
	s.mux.Lock()
	targets := make([]*serverConn, 0, len(s.subs[msg.Topic]))
	for conn := range s.subs[msg.Topic] {
		if conn != from {
			targets = append(targets, conn)
		}
	}
	s.mux.Unlock()

	for _, conn := range targets {
		if err := conn.write(Frame{Method: MethodSubscription, Message: &msg}); err != nil {
			logrus.Warnf("relay: failed to deliver on %q: %v", msg.Topic, err)
		}
	}
}
