package ldb

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"os"
	"strings"
	"testing"

	"github.com/dynastynet/finalityd/infrastructure/db/database"
)

func prepareDatabaseForTest(t *testing.T, testName string) (ldb *LevelDB, teardownFunc func()) {
	// Create a temp db to run tests against
	path, err := ioutil.TempDir("", testName)
	if err != nil {
		t.Fatalf("%s: TempDir unexpectedly "+
			"failed: %s", testName, err)
	}
	ldb, err = NewLevelDB(path, 8)
	if err != nil {
		t.Fatalf("%s: NewLevelDB unexpectedly "+
			"failed: %s", testName, err)
	}
	teardownFunc = func() {
		err = ldb.Close()
		if err != nil {
			t.Fatalf("%s: Close unexpectedly "+
				"failed: %s", testName, err)
		}
		os.RemoveAll(path)
	}
	return ldb, teardownFunc
}

func TestLevelDBSanity(t *testing.T) {
	ldb, teardownFunc := prepareDatabaseForTest(t, "TestLevelDBSanity")
	defer teardownFunc()

	key := database.MakeBucket([]byte("states")).Key([]byte("a"))
	value := []byte("value")

	exists, err := ldb.Has(key)
	if err != nil {
		t.Fatalf("TestLevelDBSanity: Has unexpectedly failed: %s", err)
	}
	if exists {
		t.Fatalf("TestLevelDBSanity: Has unexpectedly returned true before Put")
	}
	_, err = ldb.Get(key)
	if !database.IsNotFoundError(err) {
		t.Fatalf("TestLevelDBSanity: Get of a missing key returned "+
			"wrong error: %v", err)
	}

	err = ldb.Put(key, value)
	if err != nil {
		t.Fatalf("TestLevelDBSanity: Put unexpectedly failed: %s", err)
	}
	returnedValue, err := ldb.Get(key)
	if err != nil {
		t.Fatalf("TestLevelDBSanity: Get unexpectedly failed: %s", err)
	}
	if !bytes.Equal(returnedValue, value) {
		t.Fatalf("TestLevelDBSanity: Get returned wrong value. "+
			"Want: %s, got: %s", value, returnedValue)
	}

	err = ldb.Delete(key)
	if err != nil {
		t.Fatalf("TestLevelDBSanity: Delete unexpectedly failed: %s", err)
	}
	exists, err = ldb.Has(key)
	if err != nil {
		t.Fatalf("TestLevelDBSanity: Has unexpectedly failed: %s", err)
	}
	if exists {
		t.Fatalf("TestLevelDBSanity: Has unexpectedly returned true after Delete")
	}
}

func TestLevelDBBatch(t *testing.T) {
	ldb, teardownFunc := prepareDatabaseForTest(t, "TestLevelDBBatch")
	defer teardownFunc()

	bucket := database.MakeBucket([]byte("bucket"))
	err := ldb.Put(bucket.Key([]byte("deleted")), []byte("x"))
	if err != nil {
		t.Fatalf("TestLevelDBBatch: Put unexpectedly failed: %s", err)
	}

	batch := ldb.Batch()
	batch.Put(bucket.Key([]byte("added")), []byte("y"))
	batch.Delete(bucket.Key([]byte("deleted")))

	// Nothing is visible before Write
	exists, err := ldb.Has(bucket.Key([]byte("added")))
	if err != nil || exists {
		t.Fatalf("TestLevelDBBatch: batch entry visible before Write (%t, %v)", exists, err)
	}

	err = batch.Write()
	if err != nil {
		t.Fatalf("TestLevelDBBatch: Write unexpectedly failed: %s", err)
	}
	exists, err = ldb.Has(bucket.Key([]byte("added")))
	if err != nil || !exists {
		t.Fatalf("TestLevelDBBatch: batch entry missing after Write (%t, %v)", exists, err)
	}
	exists, err = ldb.Has(bucket.Key([]byte("deleted")))
	if err != nil || exists {
		t.Fatalf("TestLevelDBBatch: deleted entry still exists after Write (%t, %v)", exists, err)
	}
}

func TestCursorIteratesBucketOnly(t *testing.T) {
	ldb, teardownFunc := prepareDatabaseForTest(t, "TestCursorIteratesBucketOnly")
	defer teardownFunc()

	bucket := database.MakeBucket([]byte("bucket"))
	otherBucket := database.MakeBucket([]byte("other"))
	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("key%d", i)
		value := fmt.Sprintf("value%d", i)
		err := ldb.Put(bucket.Key([]byte(key)), []byte(value))
		if err != nil {
			t.Fatalf("TestCursorIteratesBucketOnly: Put unexpectedly failed: %s", err)
		}
		err = ldb.Put(otherBucket.Key([]byte(key)), []byte(value))
		if err != nil {
			t.Fatalf("TestCursorIteratesBucketOnly: Put unexpectedly failed: %s", err)
		}
	}

	cursor, err := ldb.Cursor(bucket)
	if err != nil {
		t.Fatalf("TestCursorIteratesBucketOnly: Cursor unexpectedly failed: %s", err)
	}

	count := 0
	for ok := cursor.First(); ok; ok = cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			t.Fatalf("TestCursorIteratesBucketOnly: Key unexpectedly failed: %s", err)
		}
		expectedSuffix := fmt.Sprintf("key%d", count)
		if string(key.Suffix()) != expectedSuffix {
			t.Fatalf("TestCursorIteratesBucketOnly: got wrong key. "+
				"Want: %s, got: %s", expectedSuffix, key.Suffix())
		}
		value, err := cursor.Value()
		if err != nil {
			t.Fatalf("TestCursorIteratesBucketOnly: Value unexpectedly failed: %s", err)
		}
		if string(value) != fmt.Sprintf("value%d", count) {
			t.Fatalf("TestCursorIteratesBucketOnly: got wrong value %s", value)
		}
		count++
	}
	if count != 5 {
		t.Fatalf("TestCursorIteratesBucketOnly: expected 5 entries, got %d", count)
	}

	err = cursor.Seek(bucket.Key([]byte("missing")))
	if !database.IsNotFoundError(err) {
		t.Fatalf("TestCursorIteratesBucketOnly: Seek returned wrong error: %v", err)
	}

	err = cursor.Close()
	if err != nil {
		t.Fatalf("TestCursorIteratesBucketOnly: Close unexpectedly failed: %s", err)
	}
	_, err = cursor.Key()
	if err == nil || !strings.Contains(err.Error(), "closed cursor") {
		t.Fatalf("TestCursorIteratesBucketOnly: Key after Close returned wrong error: %v", err)
	}
	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("TestCursorIteratesBucketOnly: Next after Close didn't panic")
			}
		}()
		cursor.Next()
	}()
}
