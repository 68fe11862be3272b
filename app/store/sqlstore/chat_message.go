package sqlstore

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/samber/lo"

	"github.com/1abhi6/BharatLens/pkg/register"
	"github.com/1abhi6/BharatLens/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.ChatMessageStore = NewChatMessageStore(provider)
	})
}

// ChatMessageStore is insert only, there is no update path for messages.
type ChatMessageStore struct {
	CommonFields
}

func NewChatMessageStore(provider SqlProviderAchieve) *ChatMessageStore {
	repo := &ChatMessageStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_CHAT_MESSAGE)
	repo.SetAllColumns("id", "session_id", "role", "content", "metadata", "seq", "created_at")
	return repo
}

// Create inserts the message and fills in its seq and created_at.
func (s *ChatMessageStore) Create(ctx context.Context, data *types.ChatMessage) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	if data.Metadata == nil {
		data.Metadata = types.Metadata{}
	}

	query := sq.Insert(s.GetTable()).
		Columns("id", "session_id", "role", "content", "metadata", "created_at").
		Values(data.ID, data.SessionID, data.Role, data.Content, data.Metadata, data.CreatedAt).
		Suffix("RETURNING seq")

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	return s.GetMaster(ctx).Get(&data.Seq, queryString, args...)
}

func (s *ChatMessageStore) GetMessage(ctx context.Context, id string) (*types.ChatMessage, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.ChatMessage
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *ChatMessageStore) ListRecent(ctx context.Context, sessionID string, limit uint64) ([]*types.ChatMessage, error) {
	if limit == 0 {
		return nil, nil
	}
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"session_id": sessionID}).
		OrderBy("created_at DESC", "seq DESC").
		Limit(limit)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []*types.ChatMessage
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return lo.Reverse(res), nil
}

func (s *ChatMessageStore) ListSessionMessages(ctx context.Context, sessionID string, page, pageSize uint64) ([]*types.ChatMessage, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"session_id": sessionID}).
		OrderBy("created_at", "seq")
	if pageSize != types.NO_PAGINATION {
		query = query.Limit(pageSize).Offset(pageOffset(page, pageSize))
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []*types.ChatMessage
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ChatMessageStore) ListUnanswered(ctx context.Context, before int64, limit uint64) ([]*types.ChatMessage, error) {
	table := s.GetTable()
	query := sq.Select(s.GetAllColumnsWithPrefix("m")...).From(table+" m").
		Where(sq.Eq{"m.role": types.ROLE_USER}).
		Where(sq.Lt{"m.created_at": before}).
		Where(fmt.Sprintf(`NOT EXISTS (SELECT 1 FROM %s a WHERE a.session_id = m.session_id AND a.role = '%s' AND (a.created_at, a.seq) > (m.created_at, m.seq))`,
			table, types.ROLE_ASSISTANT)).
		OrderBy("m.created_at", "m.seq").
		Limit(limit)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []*types.ChatMessage
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}
