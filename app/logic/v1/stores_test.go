package v1

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/1abhi6/BharatLens/app/store"
	"github.com/1abhi6/BharatLens/pkg/types"
)

// memStores keeps every table in memory. Message order is insertion order.
type memStores struct {
	mu          sync.Mutex
	seq         int64
	users       map[string]types.User
	sessions    map[string]types.ChatSession
	messages    []*types.ChatMessage
	attachments []*types.Attachment

	failMessageCreate    func(msg *types.ChatMessage) error
	failAttachmentCreate error
	failListRecent       error
}

func newMemStores() *memStores {
	return &memStores{
		users:    make(map[string]types.User),
		sessions: make(map[string]types.ChatSession),
	}
}

func (m *memStores) UserStore() store.UserStore               { return &memUsers{m} }
func (m *memStores) ChatSessionStore() store.ChatSessionStore { return &memSessions{m} }
func (m *memStores) ChatMessageStore() store.ChatMessageStore { return &memMessages{m} }
func (m *memStores) AttachmentStore() store.AttachmentStore   { return &memAttachments{m} }

func (m *memStores) sessionMessages(sessionID string) []*types.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return lo.Filter(m.messages, func(item *types.ChatMessage, _ int) bool {
		return item.SessionID == sessionID
	})
}

func (m *memStores) sessionAttachments(sessionID string) []*types.Attachment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return lo.Filter(m.attachments, func(item *types.Attachment, _ int) bool {
		return item.SessionID == sessionID
	})
}

type memUsers struct{ m *memStores }

func (s *memUsers) GetTable(...interface{}) string { return types.TABLE_USER.Name() }

func (s *memUsers) Create(ctx context.Context, data types.User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.users[data.ID] = data
	return nil
}

func (s *memUsers) GetUser(ctx context.Context, id string) (*types.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	u, ok := s.m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (s *memUsers) GetByEmail(ctx context.Context, email string) (*types.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, u := range s.m.users {
		if u.Email == strings.ToLower(email) {
			return &u, nil
		}
	}
	return nil, sql.ErrNoRows
}

type memSessions struct{ m *memStores }

func (s *memSessions) GetTable(...interface{}) string { return types.TABLE_CHAT_SESSION.Name() }

func (s *memSessions) Create(ctx context.Context, data types.ChatSession) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.sessions[data.ID] = data
	return nil
}

func (s *memSessions) GetChatSession(ctx context.Context, id string) (*types.ChatSession, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	v, ok := s.m.sessions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &v, nil
}

func (s *memSessions) ListUserSessions(ctx context.Context, userID string, page, pageSize uint64) ([]*types.ChatSession, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var res []*types.ChatSession
	for _, v := range s.m.sessions {
		if v.UserID == userID {
			v := v
			res = append(res, &v)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID > res[j].ID })
	if pageSize == types.NO_PAGINATION {
		return res, nil
	}
	if page == 0 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= uint64(len(res)) {
		return nil, nil
	}
	return res[start:min(start+pageSize, uint64(len(res)))], nil
}

func (s *memSessions) TotalUserSessions(ctx context.Context, userID string) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return int64(lo.CountBy(lo.Values(s.m.sessions), func(item types.ChatSession) bool {
		return item.UserID == userID
	})), nil
}

func (s *memSessions) Touch(ctx context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	v, ok := s.m.sessions[id]
	if !ok {
		return sql.ErrNoRows
	}
	v.UpdatedAt = time.Now().Unix()
	s.m.sessions[id] = v
	return nil
}

func (s *memSessions) Delete(ctx context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.sessions, id)
	s.m.messages = lo.Reject(s.m.messages, func(item *types.ChatMessage, _ int) bool { return item.SessionID == id })
	s.m.attachments = lo.Reject(s.m.attachments, func(item *types.Attachment, _ int) bool { return item.SessionID == id })
	return nil
}

type memMessages struct{ m *memStores }

func (s *memMessages) GetTable(...interface{}) string { return types.TABLE_CHAT_MESSAGE.Name() }

func (s *memMessages) Create(ctx context.Context, data *types.ChatMessage) error {
	if s.m.failMessageCreate != nil {
		if err := s.m.failMessageCreate(data); err != nil {
			return err
		}
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.sessions[data.SessionID]; !ok {
		return sql.ErrNoRows
	}
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	s.m.seq++
	data.Seq = s.m.seq
	cp := *data
	s.m.messages = append(s.m.messages, &cp)
	return nil
}

func (s *memMessages) GetMessage(ctx context.Context, id string) (*types.ChatMessage, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	v, ok := lo.Find(s.m.messages, func(item *types.ChatMessage) bool { return item.ID == id })
	if !ok {
		return nil, sql.ErrNoRows
	}
	return v, nil
}

func (s *memMessages) ListRecent(ctx context.Context, sessionID string, limit uint64) ([]*types.ChatMessage, error) {
	if s.m.failListRecent != nil {
		return nil, s.m.failListRecent
	}
	all := s.m.sessionMessages(sessionID)
	if uint64(len(all)) > limit {
		all = all[uint64(len(all))-limit:]
	}
	return all, nil
}

func (s *memMessages) ListSessionMessages(ctx context.Context, sessionID string, page, pageSize uint64) ([]*types.ChatMessage, error) {
	return s.m.sessionMessages(sessionID), nil
}

func (s *memMessages) ListUnanswered(ctx context.Context, before int64, limit uint64) ([]*types.ChatMessage, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var res []*types.ChatMessage
	for i, msg := range s.m.messages {
		if msg.Role != types.ROLE_USER || msg.CreatedAt >= before {
			continue
		}
		answered := lo.ContainsBy(s.m.messages[i+1:], func(item *types.ChatMessage) bool {
			return item.SessionID == msg.SessionID && item.Role == types.ROLE_ASSISTANT
		})
		if !answered {
			res = append(res, msg)
		}
		if uint64(len(res)) == limit {
			break
		}
	}
	return res, nil
}

type memAttachments struct{ m *memStores }

func (s *memAttachments) GetTable(...interface{}) string { return types.TABLE_ATTACHMENT.Name() }

func (s *memAttachments) Create(ctx context.Context, data types.Attachment) error {
	if s.m.failAttachmentCreate != nil {
		return s.m.failAttachmentCreate
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.sessions[data.SessionID]; !ok {
		return sql.ErrNoRows
	}
	if data.MessageID != "" && !lo.ContainsBy(s.m.messages, func(item *types.ChatMessage) bool {
		return item.ID == data.MessageID && item.SessionID == data.SessionID
	}) {
		return sql.ErrNoRows
	}
	s.m.attachments = append(s.m.attachments, &data)
	return nil
}

func (s *memAttachments) ListByMessages(ctx context.Context, messageIDs []string) ([]*types.Attachment, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return lo.Filter(s.m.attachments, func(item *types.Attachment, _ int) bool {
		return lo.Contains(messageIDs, item.MessageID)
	}), nil
}

func (s *memAttachments) ListBySession(ctx context.Context, sessionID string) ([]*types.Attachment, error) {
	return s.m.sessionAttachments(sessionID), nil
}
