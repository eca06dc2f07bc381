package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"novelhub/pkg/logger"
)

const (
	RegisterMessageType   = "register"
	NewChapterMessageType = "new_chapter"
)

type RegisterMessage struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
}

// Notification is one (follower, chapter) emission produced by the
// dispatcher. The transport owns actual delivery.
type Notification struct {
	FollowerID    string `json:"-"`
	Type          string `json:"type"`
	NovelID       string `json:"novel_id"`
	ChapterID     string `json:"chapter_id"`
	ChapterNumber int    `json:"chapter_number"`
}

// Transport delivers a single notification to a single follower.
type Transport interface {
	Send(n Notification) error
}

type Client struct {
	UserID string
	Addr   *net.UDPAddr
}

type Registry struct {
	mu      sync.RWMutex
	clients map[string]Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Client)}
}

func (r *Registry) Register(userID string, addr *net.UDPAddr) {
	if userID == "" || addr == nil {
		return
	}
	r.mu.Lock()
	r.clients[userID] = Client{UserID: userID, Addr: addr}
	r.mu.Unlock()
}

func (r *Registry) Remove(userID string) {
	r.mu.Lock()
	delete(r.clients, userID)
	r.mu.Unlock()
}

func (r *Registry) Lookup(userID string) (Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[userID]
	return c, ok
}

// UDPServer accepts register datagrams from reader clients and delivers
// chapter notifications back to them. It is the default Transport.
type UDPServer struct {
	addr     string
	registry *Registry
	log      *logger.Logger
	conn     *net.UDPConn
}

func NewUDPServer(addr string, registry *Registry, log *logger.Logger) *UDPServer {
	return &UDPServer{addr: addr, registry: registry, log: log}
}

func (s *UDPServer) Run() error {
	udpAddr, err := net.ResolveUDPAddr("udp", s.addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return err
	}
	s.conn = conn
	defer conn.Close()

	s.log.Info("udp notify server listening", "addr", s.addr)

	buffer := make([]byte, 2048)
	for {
		n, addr, err := conn.ReadFromUDP(buffer)
		if err != nil {
			return err
		}
		msg, err := parseRegisterMessage(buffer[:n])
		if err != nil {
			s.log.Warn("invalid udp message", "from", addr.String(), "err", err)
			continue
		}
		if msg.Type != RegisterMessageType {
			continue
		}
		s.registry.Register(msg.UserID, addr)
		s.log.Info("registered udp client", "user_id", msg.UserID, "addr", addr.String())
	}
}

// Send delivers one datagram, with a single retry before evicting a dead
// client. A follower with no registered address is simply skipped; delivery
// is best-effort for connected readers.
func (s *UDPServer) Send(n Notification) error {
	if s.conn == nil {
		return errors.New("udp notify server not running")
	}

	client, ok := s.registry.Lookup(n.FollowerID)
	if !ok {
		return nil
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	if err := s.sendOnce(client, payload); err == nil {
		return nil
	}
	if err := s.sendOnce(client, payload); err != nil {
		s.registry.Remove(client.UserID)
		return fmt.Errorf("notify %s at %s: %w", client.UserID, client.Addr, err)
	}
	return nil
}

func (s *UDPServer) sendOnce(client Client, payload []byte) error {
	if client.Addr == nil {
		return errors.New("missing client address")
	}
	_, err := s.conn.WriteToUDP(payload, client.Addr)
	return err
}

func parseRegisterMessage(data []byte) (RegisterMessage, error) {
	var msg RegisterMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, err
	}
	if msg.UserID == "" || msg.Type == "" {
		return msg, errors.New("missing required fields")
	}
	return msg, nil
}

func (s *UDPServer) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
