package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type txProbe struct {
	ID    int
	Label string
}

var testDBSeq int

func newTestClient(t *testing.T) (*Client, *gorm.DB) {
	t.Helper()
	testDBSeq++
	dsn := fmt.Sprintf("file:dbtest%d?mode=memory&cache=shared", testDBSeq)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&txProbe{}); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return &Client{conn: conn}, conn
}

func countProbes(t *testing.T, conn *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := conn.Model(&txProbe{}).Count(&n).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	client, conn := newTestClient(t)

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(&txProbe{Label: "kept"}).Error
	})
	if err != nil {
		t.Fatalf("WithTx returned error: %v", err)
	}
	if n := countProbes(t, conn); n != 1 {
		t.Fatalf("expected 1 row after commit, got %d", n)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	client, conn := newTestClient(t)

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&txProbe{Label: "discarded"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected WithTx to surface the callback error")
	}
	if n := countProbes(t, conn); n != 0 {
		t.Fatalf("expected rollback to leave 0 rows, got %d", n)
	}
}

func TestPing(t *testing.T) {
	client, _ := newTestClient(t)
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}
