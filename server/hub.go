package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"cylheat/calculator"
	"cylheat/model"
)

// Hub serves one websocket connection. Requests are handled in order; a solve
// runs in its own goroutine and at most one runs at a time.
type Hub struct {
	c    *calculator.Calculator
	conn *websocket.Conn
	// request
	msg chan model.Msg
	// response, 只有 handleResponse 写连接
	send chan model.Msg

	params *calculator.SimulationParameters

	mu     sync.Mutex
	cancel context.CancelFunc // 非 nil 表示正在计算
	wg     sync.WaitGroup
}

func NewHub(conn *websocket.Conn, c *calculator.Calculator) *Hub {
	return &Hub{
		c:    c,
		conn: conn,
		msg:  make(chan model.Msg, 10),
		send: make(chan model.Msg, 16),
	}
}

// run 读取请求直到连接关闭，然后停止计算并释放连接
func (h *Hub) run() {
	logger := log.WithField("remote", h.conn.RemoteAddr().String())
	logger.Info("websocket connected")

	requestDone := make(chan struct{})
	responseDone := make(chan struct{})
	go func() {
		h.handleRequest()
		close(requestDone)
	}()
	go func() {
		h.handleResponse()
		close(responseDone)
	}()

	for {
		var msg model.Msg
		err := h.conn.ReadJSON(&msg)
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			// 消息格式错误不关闭连接
			h.send <- errorMsg(err)
			continue
		}
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WithError(err).Warn("websocket read failed")
			}
			break
		}
		h.msg <- msg
	}

	close(h.msg)
	<-requestDone
	h.stop()
	h.wg.Wait()
	close(h.send)
	<-responseDone
	h.conn.Close()
	logger.Info("websocket closed")
}

func (h *Hub) handleResponse() {
	for reply := range h.send {
		if err := h.conn.WriteJSON(&reply); err != nil {
			log.WithError(err).WithField("type", reply.Type).Warn("websocket write failed")
		}
	}
}

func (h *Hub) handleRequest() {
	for msg := range h.msg {
		switch msg.Type {
		case model.TypeEnv:
			if err := h.setEnv(msg.Content); err != nil {
				h.replyError(err)
				continue
			}
			h.reply(model.TypeEnvSet, h.params)
		case model.TypeStart:
			// start 可以直接携带参数
			if msg.Content != "" {
				if err := h.setEnv(msg.Content); err != nil {
					h.replyError(err)
					continue
				}
			}
			h.start()
		case model.TypeStop:
			if !h.stop() {
				h.reply(model.TypeStopped, "idle")
			}
		default:
			log.WithField("type", msg.Type).Warn("no such type")
			h.replyError(errors.New("no such type: " + msg.Type))
		}
	}
}

func (h *Hub) setEnv(content string) error {
	var env model.Env
	if err := json.Unmarshal([]byte(content), &env); err != nil {
		return err
	}
	p, err := env.Parameters(h.c.Config())
	if err != nil {
		return err
	}
	h.params = &p
	log.WithFields(log.Fields{
		"radius":             p.Radius,
		"length":             p.Length,
		"time":               p.Time,
		"initialTemp":        p.InitialTemp,
		"boundaryTemp":       p.BoundaryTemp,
		"thermalDiffusivity": p.ThermalDiffusivity,
	}).Info("env set")
	return nil
}

func (h *Hub) start() {
	if h.params == nil {
		h.replyError(errors.New("env is not set"))
		return
	}
	h.mu.Lock()
	if h.cancel != nil {
		h.mu.Unlock()
		h.reply(model.TypeBusy, "calculation in progress")
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.wg.Add(1)
	h.mu.Unlock()

	p := *h.params
	h.reply(model.TypeStarted, model.Progress{Total: calculator.NumTimeSteps(p, h.c.Config())})
	go h.calculate(ctx, p)
}

// stop 取消正在进行的计算，返回是否有计算被取消
func (h *Hub) stop() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel == nil {
		return false
	}
	h.cancel()
	return true
}

func (h *Hub) calculate(ctx context.Context, p calculator.SimulationParameters) {
	defer h.wg.Done()
	res, err := h.c.CalculateWithProgress(ctx, p, func(done, total int) {
		h.reply(model.TypeProgress, model.Progress{Done: done, Total: total})
	})

	var reply model.Msg
	switch {
	case errors.Is(err, context.Canceled):
		reply = model.Msg{Type: model.TypeStopped, Content: "stopped"}
	case err != nil:
		reply = errorMsg(err)
	default:
		content, err := model.NewResultContent(res)
		if err != nil {
			reply = errorMsg(err)
		} else {
			reply = newMsg(model.TypeResult, content)
		}
	}

	// 先标记空闲再推送结果，客户端收到结果后可以立即重新开始
	h.mu.Lock()
	h.cancel()
	h.cancel = nil
	h.mu.Unlock()
	h.send <- reply
}

func (h *Hub) reply(typ string, content interface{}) {
	h.send <- newMsg(typ, content)
}

func (h *Hub) replyError(err error) {
	log.WithError(err).Info("request rejected")
	h.send <- errorMsg(err)
}

func errorMsg(err error) model.Msg {
	return model.Msg{Type: model.TypeError, Content: err.Error()}
}

func newMsg(typ string, content interface{}) model.Msg {
	if s, ok := content.(string); ok {
		return model.Msg{Type: typ, Content: s}
	}
	data, err := json.Marshal(content)
	if err != nil {
		return errorMsg(err)
	}
	return model.Msg{Type: typ, Content: string(data)}
}
