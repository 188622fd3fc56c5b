package relay

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/certchain/certchain/pkg/util"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var ErrClosed = errors.New("relay client closed")
var ErrUnavailable = errors.New("relay unavailable")

type ClientOption func(c *Client)

type clientOutputMsg struct {
	frame  Frame
	result chan error
}

// Client keeps one websocket connection to the relay, reconnecting in the
// background and re-subscribing every known topic after a reconnect.
type Client struct {
	serverURL         string
	reconnectInterval time.Duration

	mux         sync.Mutex
	closeChan   chan any
	doneChan    chan any
	outputChan  chan clientOutputMsg
	responseMap map[string]chan error
	sinks       map[string]MessageSink

	connectionStatusCallback ClientConnectionStatusCallback
}

func NewClient(opts ...ClientOption) *Client {
	client := &Client{
		reconnectInterval: 5 * time.Second,
		closeChan:         make(chan any),
		doneChan:          make(chan any),
		outputChan:        make(chan clientOutputMsg, 16),
		responseMap:       make(map[string]chan error),
		sinks:             make(map[string]MessageSink),
	}

	for _, opt := range opts {
		opt(client)
	}

	go client.outputWorker()

	return client
}

func (c *Client) Close() error {
	c.mux.Lock()
	select {
	case <-c.closeChan:
		c.mux.Unlock()
		return nil
	default:
	}
	close(c.closeChan)
	c.mux.Unlock()

	<-c.doneChan
	return nil
}

func (c *Client) outputWorker() {
	wg := sync.WaitGroup{}
	var conn *websocket.Conn
	var inputWorkerCtx context.Context
	var inputWorkerCancel context.CancelCauseFunc
	var err error

	defer func() {
		if conn != nil {
			conn.Close()
		}
		wg.Wait()
		c.failWaitingResponses(ErrClosed)
		c.emptyOutputQueue()
		close(c.doneChan)
	}()

	cleanUp := func() {
		if conn != nil {
			c.notifyStatus(false)
			conn.Close()
		}
		conn = nil
		inputWorkerCtx = nil
		inputWorkerCancel = nil
		wg.Wait()
		c.emptyOutputQueue()
		c.failWaitingResponses(ErrUnavailable)
		ShallowSleep(context.Background(), c.reconnectInterval, c.closeChan)
	}

	for {
		select {
		case <-c.closeChan:
			return
		default:
		}
		if conn == nil {
			inputWorkerCtx, inputWorkerCancel = context.WithCancelCause(context.Background())
			conn, err = c.prepareConnection(context.Background())
			if err != nil {
				logrus.Errorf("RelayClient: failed to prepare connection to %q: %v", c.serverURL, err)
				conn = nil
				c.emptyOutputQueue()
				ShallowSleep(context.Background(), c.reconnectInterval, c.closeChan)
				continue
			}
			wg.Add(1)
			go func(conn *websocket.Conn, cancel context.CancelCauseFunc) {
				defer wg.Done()
				c.inputWorker(cancel, conn)
			}(conn, inputWorkerCancel)
			if err := c.resubscribe(conn); err != nil {
				logrus.Errorf("RelayClient: failed to restore subscriptions on %q: %v", c.serverURL, err)
				cleanUp()
				continue
			}
			c.notifyStatus(true)
		}

		select {
		case <-c.closeChan:
			return
		case <-inputWorkerCtx.Done():
			// inputWorker has some error. We need to close the connection.
			cleanUp()
		case msg := <-c.outputChan:
			if msg.result != nil {
				c.addWaitingResponse(msg.frame.ID, msg.result)
			}

			jsonRaw, _ := json.Marshal(msg.frame)
			if err := conn.WriteMessage(websocket.TextMessage, jsonRaw); err != nil {
				logrus.Errorf("RelayClient: failed to write message to %q: %v", c.serverURL, err)
				cleanUp()
			}
		}
	}
}

func (c *Client) inputWorker(cancel context.CancelCauseFunc, conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.closeChan:
			default:
				logrus.Errorf("RelayClient: failed to read message from %q: %v", c.serverURL, err)
			}
			cancel(err)
			return
		}

		frame, err := ParseFrame(raw)
		if err != nil {
			logrus.Errorf("RelayClient: failed to parse message from %q: %v", c.serverURL, err)
			continue
		}

		switch {
		case frame.IsResponse():
			c.receiveResponse(frame)
		case frame.Method == MethodSubscription && frame.Message != nil:
			c.receiveMessage(*frame.Message)
		default:
			logrus.Warnf("RelayClient: unsupported frame from %q: %q", c.serverURL, frame.Method)
		}
	}
}

func (c *Client) receiveResponse(frame Frame) {
	if frame.Error != "" {
		c.replyWaitingResponse(frame.ID, errors.New(frame.Error))
		return
	}
	c.replyWaitingResponse(frame.ID, nil)
}

func (c *Client) receiveMessage(msg Message) {
	c.mux.Lock()
	sink := c.sinks[msg.Topic]
	c.mux.Unlock()
	if sink == nil {
		logrus.Debugf("RelayClient: drop message of unsubscribed topic %q", msg.Topic)
		return
	}
	if err := sink(context.Background(), msg); err != nil {
		logrus.Errorf("RelayClient: failed to handle message on %q: %v", msg.Topic, err)
	}
}

func (c *Client) Publish(ctx context.Context, topic string, tag int, data []byte) error {
	return c.request(ctx, Frame{
		Method:  MethodPublish,
		Message: &Message{Topic: topic, Tag: tag, Data: data, Timestamp: time.Now().Unix()},
	})
}

func (c *Client) Subscribe(ctx context.Context, topic string, sink MessageSink) error {
	c.mux.Lock()
	c.sinks[topic] = sink
	c.mux.Unlock()

	if err := c.request(ctx, Frame{Method: MethodSubscribe, Topic: topic}); err != nil {
		c.mux.Lock()
		delete(c.sinks, topic)
		c.mux.Unlock()
		return err
	}
	return nil
}

func (c *Client) Unsubscribe(ctx context.Context, topic string) error {
	c.mux.Lock()
	delete(c.sinks, topic)
	c.mux.Unlock()

	return c.request(ctx, Frame{Method: MethodUnsubscribe, Topic: topic})
}

func (c *Client) request(ctx context.Context, frame Frame) error {
	frame.ID = util.NewRequestID()
	msg := clientOutputMsg{frame: frame, result: make(chan error, 1)}
	if err := c.send(ctx, msg); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		c.dropWaitingResponse(frame.ID)
		return ctx.Err()
	case err := <-msg.result:
		if err != nil {
			return err
		}
	}
	logrus.Debugf("RelayClient: %s %q acknowledged", frame.Method, frame.ID)
	return nil
}

func (c *Client) send(ctx context.Context, msg clientOutputMsg) error {
	select {
	case <-c.closeChan:
		return ErrClosed
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.closeChan:
		return ErrClosed
	case c.outputChan <- msg:
		return nil
	}
}

// resubscribe writes subscribe frames for the known topics directly, before the
// connection is handed to callers.
func (c *Client) resubscribe(conn *websocket.Conn) error {
	c.mux.Lock()
	topics := make([]string, 0, len(c.sinks))
	for topic := range c.sinks {
		topics = append(topics, topic)
	}
	c.mux.Unlock()

	for _, topic := range topics {
		raw, _ := json.Marshal(Frame{ID: util.NewRequestID(), Method: MethodSubscribe, Topic: topic})
		if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) notifyStatus(status bool) {
	if c.connectionStatusCallback == nil {
		return
	}
	go c.connectionStatusCallback(context.Background(), c, status)
}

func (c *Client) prepareConnection(ctx context.Context) (*websocket.Conn, error) {
	serverURL, err := url.Parse(c.serverURL)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, serverURL.String(), nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (c *Client) addWaitingResponse(requestID string, result chan error) {
	c.mux.Lock()
	defer c.mux.Unlock()

	c.responseMap[requestID] = result
}

func (c *Client) dropWaitingResponse(requestID string) {
	c.mux.Lock()
	defer c.mux.Unlock()

	delete(c.responseMap, requestID)
}

func (c *Client) replyWaitingResponse(requestID string, result error) {
	c.mux.Lock()
	ch, ok := c.responseMap[requestID]
	delete(c.responseMap, requestID)
	c.mux.Unlock()

	if ok && ch != nil {
		ch <- result
	}
}

func (c *Client) failWaitingResponses(err error) {
	c.mux.Lock()
	pending := c.responseMap
	c.responseMap = make(map[string]chan error)
	c.mux.Unlock()

	for _, ch := range pending {
		ch <- err
	}
}

func (c *Client) emptyOutputQueue() {
	for {
		select {
		case msg := <-c.outputChan:
			if msg.result == nil {
				continue
			}
			msg.result <- ErrUnavailable
		default:
			return
		}
	}
}

func ShallowSleep(ctx context.Context, d time.Duration, signalChan chan any) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-signalChan:
	case <-ctx.Done():
	case <-timer.C:
	}
}
