package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/1abhi6/BharatLens/pkg/register"
	"github.com/1abhi6/BharatLens/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.AttachmentStore = NewAttachmentStore(provider)
	})
}

type AttachmentStore struct {
	CommonFields
}

func NewAttachmentStore(provider SqlProviderAchieve) *AttachmentStore {
	repo := &AttachmentStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_ATTACHMENT)
	repo.SetAllColumns("id", "COALESCE(session_id, '') AS session_id", "COALESCE(message_id, '') AS message_id",
		"url", "media_type", "metadata", "COALESCE(audio_url, '') AS audio_url", "created_at")
	return repo
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// Create inserts the row only when the session exists and, if a message is
// referenced, that message belongs to the same session.
func (s *AttachmentStore) Create(ctx context.Context, data types.Attachment) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	if data.Metadata == nil {
		data.Metadata = types.Metadata{}
	}

	guard := sq.Select().
		Column("?::varchar", data.ID).
		Column("?::varchar", data.SessionID).
		Column("?::varchar", nullable(data.MessageID)).
		Column("?::text", data.URL).
		Column("?::varchar", data.MediaType).
		Column("?::jsonb", data.Metadata).
		Column("?::text", nullable(data.AudioURL)).
		Column("?::bigint", data.CreatedAt).
		Where(fmt.Sprintf("EXISTS (SELECT 1 FROM %s WHERE id = ?)", types.TABLE_CHAT_SESSION.Name()), data.SessionID)
	if data.MessageID != "" {
		guard = guard.Where(fmt.Sprintf("EXISTS (SELECT 1 FROM %s WHERE id = ? AND session_id = ?)", types.TABLE_CHAT_MESSAGE.Name()),
			data.MessageID, data.SessionID)
	}

	query := sq.Insert(s.GetTable()).
		Columns("id", "session_id", "message_id", "url", "media_type", "metadata", "audio_url", "created_at").
		Select(guard)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	res, err := s.GetMaster(ctx).Exec(queryString, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *AttachmentStore) ListByMessages(ctx context.Context, messageIDs []string) ([]*types.Attachment, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"message_id": messageIDs}).
		OrderBy("created_at")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []*types.Attachment
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *AttachmentStore) ListBySession(ctx context.Context, sessionID string) ([]*types.Attachment, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"session_id": sessionID}).
		OrderBy("created_at")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []*types.Attachment
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}
