package database

import (
	"regexp"
	"testing"

	"eternal-mint/model"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockMySQL(t *testing.T) (*MySQLDatabase, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	return NewMySQLDatabaseWithGorm(gdb), mock
}

func TestMySQLSaveIgnoresDuplicates(t *testing.T) {
	db, mock := newMockMySQL(t)
	rec := &model.NftMinted{ID: "0x01", Creator: "0xA", TokenID: "1", Supply: "5", EventMeta: meta(3, 0)}

	insert := regexp.QuoteMeta("INSERT INTO `tb_nft_minted`") + ".*" + regexp.QuoteMeta("ON DUPLICATE KEY UPDATE")
	mock.ExpectExec(insert).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insert).WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := db.SaveNftMinted(rec)
	if err != nil || !created {
		t.Fatalf("first save: created=%v err=%v", created, err)
	}
	created, err = db.SaveNftMinted(rec)
	if err != nil || created {
		t.Fatalf("duplicate save: created=%v err=%v", created, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestMySQLGetNotFound(t *testing.T) {
	db, mock := newMockMySQL(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `tb_role_granted`")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := db.GetRoleGrantedByID("nope"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMySQLListBatchByToken(t *testing.T) {
	db, mock := newMockMySQL(t)

	rows := sqlmock.NewRows([]string{
		"id", "distributor", "recipients", "token_ids", "amounts", "recipient_count",
		"block_number", "log_index", "block_timestamp", "transaction_hash",
	}).AddRow("b1", "0xD", `["0x1","0x2"]`, `["7","7"]`, `["1","2"]`, 2, 20, 0, 1700000020, "0xabc")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `tb_batch_distribution` WHERE token_ids LIKE") + ".*" +
		regexp.QuoteMeta("ORDER BY block_number DESC,log_index DESC")).
		WillReturnRows(rows)

	recs, next, err := db.ListBatchDistributions(DistributionFilter{TokenID: "7"}, 0, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 || next != 1 {
		t.Fatalf("unexpected result %d next=%d", len(recs), next)
	}
	if len(recs[0].Recipients) != 2 || recs[0].Amounts[1] != "2" || recs[0].BlockNumber != 20 {
		t.Fatalf("unexpected record %+v", recs[0])
	}
}

func TestMySQLEntityStats(t *testing.T) {
	db, mock := newMockMySQL(t)
	for i, table := range []string{"tb_nft_minted", "tb_role_granted", "tb_role_revoked", "tb_batch_distribution", "tb_single_distribution"} {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `" + table + "`")).
			WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(i + 1))
	}

	stats, err := db.GetEntityStats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.NftMinted != 1 || stats.SingleDistribution != 5 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
