package realtime

import (
	"bufio"
	"net"

	"novelhub/pkg/logger"
)

// Server is the plain-TCP side of the hub: line-delimited JSON events for
// clients that cannot speak WebSocket.
type Server struct {
	Addr string
	Hub  *Hub
	Log  *logger.Logger

	ln net.Listener
}

func NewServer(addr string, hub *Hub, log *logger.Logger) *Server {
	return &Server{Addr: addr, Hub: hub, Log: log}
}

func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.Log.Info("tcp event server listening", "addr", s.Addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}

		s.Hub.Add(conn)
		s.Hub.Welcome(conn)
		s.Log.Info("tcp client connected", "remote", conn.RemoteAddr().String())

		go func(c net.Conn) {
			defer func() {
				s.Hub.Remove(c)
				s.Log.Info("tcp client disconnected", "remote", c.RemoteAddr().String())
			}()

			// Keep the connection alive; if client sends anything, just consume.
			sc := bufio.NewScanner(c)
			for sc.Scan() {
			}
		}(conn)
	}
}

func (s *Server) Close() error {
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}
