package gormpersistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// newDryRunDB 构造一个不触网的 GORM 连接，只生成 SQL 而不执行。
// sql.Open 是惰性的，SkipInitializeWithVersion 跳过版本探测查询。
func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	sqlDB, err := sql.Open("mysql", "dryrun:dryrun@tcp(127.0.0.1:3306)/dryrun")
	require.NoError(t, err)
	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

// captureQuerySQL 在查询回调之后截获生成的 SQL 语句
func captureQuerySQL(t *testing.T, db *gorm.DB) *string {
	t.Helper()
	var captured string
	err := db.Callback().Query().After("gorm:query").Register("test_capture_sql", func(tx *gorm.DB) {
		captured = tx.Statement.SQL.String()
	})
	require.NoError(t, err)
	return &captured
}

// 同一时间戳落库的消息也必须有稳定的返回顺序
func TestHistoryBetween_OrderHasTieBreak(t *testing.T) {
	db := newDryRunDB(t)
	captured := captureQuerySQL(t, db)
	repo := NewGormMessageRepository(db)

	_, err := repo.HistoryBetween(context.Background(), 1, 2)

	require.NoError(t, err)
	assert.Contains(t, *captured, "ORDER BY created_at ASC, id ASC")
}

func TestHistoryBetween_QueryIsBidirectional(t *testing.T) {
	db := newDryRunDB(t)
	captured := captureQuerySQL(t, db)
	repo := NewGormMessageRepository(db)

	_, err := repo.HistoryBetween(context.Background(), 1, 2)

	require.NoError(t, err)
	assert.Contains(t, *captured, "(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)")
}

func TestFindByParticipants_PicksEarliestDeterministically(t *testing.T) {
	db := newDryRunDB(t)
	captured := captureQuerySQL(t, db)
	repo := NewGormRoomRepository(db)

	_, err := repo.FindByParticipants(context.Background(), 1, 2)

	require.NoError(t, err)
	assert.Contains(t, *captured, "ORDER BY created_at ASC, id ASC")
}
