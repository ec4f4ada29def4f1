package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"cylheat/calculator"
	"cylheat/material"
)

type Config struct {
	Addr            string
	ReadBufferSize  int
	WriteBufferSize int
}

func LoadConfig(file *ini.File) Config {
	sec := file.Section("server")
	return Config{
		Addr:            sec.Key("Addr").MustString(":9000"),
		ReadBufferSize:  sec.Key("ReadBufferSize").MustInt(1024),
		WriteBufferSize: sec.Key("WriteBufferSize").MustInt(1024),
	}
}

type Server struct {
	addr     string
	upgrader websocket.Upgrader
	c        *calculator.Calculator
}

func NewServer(addr string, upgrader websocket.Upgrader, c *calculator.Calculator) *Server {
	return &Server{
		addr:     addr,
		upgrader: upgrader,
		c:        c,
	}
}

// serveWs handles websocket requests from the peer. Every connection gets its
// own hub; the calculator is shared.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	NewHub(conn, s.c).run()
}

// 材料列表, 供前端选择
func (s *Server) serveMaterials(w http.ResponseWriter, _ *http.Request) {
	list := make([]material.Material, 0)
	for _, name := range material.Names() {
		m, _ := material.Lookup(name)
		list = append(list, m)
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(list); err != nil {
		log.WithError(err).Warn("writing material list")
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWs)
	mux.HandleFunc("/materials", s.serveMaterials)
	return mux
}

func (s *Server) Serve() error {
	log.WithField("addr", s.addr).Info("server listening")
	return http.ListenAndServe(s.addr, s.Handler())
}
