package types

import "fmt"

type TableName string

func (s TableName) Name() string {
	return fmt.Sprintf("%s%s", TABLE_PREFIX, s)
}

const TABLE_PREFIX = "bl_"

const (
	TABLE_USER              = TableName("user")
	TABLE_CHAT_SESSION      = TableName("chat_session")
	TABLE_CHAT_MESSAGE      = TableName("chat_message")
	TABLE_ATTACHMENT        = TableName("attachment")
	TABLE_SCHEMA_MIGRATIONS = TableName("schema_migrations")
)
