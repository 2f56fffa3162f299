package finalitystatestore

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/dynastynet/finalityd/domain/dagconfig"
	"github.com/dynastynet/finalityd/domain/finality/finalitystate"
	"github.com/dynastynet/finalityd/domain/finality/model"
	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
	"github.com/dynastynet/finalityd/infrastructure/db/database"
	"github.com/dynastynet/finalityd/infrastructure/db/database/ldb"
	"github.com/pkg/errors"
)

func prepareStoreForTest(t *testing.T, testName string, cacheSize int) (store model.FinalityStateStore,
	db database.Database, teardownFunc func()) {

	path, err := ioutil.TempDir("", testName)
	if err != nil {
		t.Fatalf("%s: TempDir unexpectedly failed: %s", testName, err)
	}
	levelDB, err := ldb.NewLevelDB(path, 8)
	if err != nil {
		t.Fatalf("%s: NewLevelDB unexpectedly failed: %s", testName, err)
	}
	store, err = New(levelDB, database.MakeBucket([]byte("test")), &dagconfig.SimnetParams.Finalization, cacheSize)
	if err != nil {
		t.Fatalf("%s: New unexpectedly failed: %s", testName, err)
	}
	teardownFunc = func() {
		err = levelDB.Close()
		if err != nil {
			t.Fatalf("%s: Close unexpectedly failed: %s", testName, err)
		}
		os.RemoveAll(path)
	}
	return store, levelDB, teardownFunc
}

func testHash(b byte) *externalapi.DomainHash {
	var hashBytes [externalapi.DomainHashSize]byte
	hashBytes[0] = b
	return externalapi.NewDomainHashFromByteArray(&hashBytes)
}

func testState(t *testing.T, epochs externalapi.Epoch) *finalitystate.FinalizationState {
	params := &dagconfig.SimnetParams.Finalization
	state := finalitystate.New(params)
	var address externalapi.ValidatorAddress
	address[0] = byte(epochs)
	err := state.ProcessDeposit(address, params.MinDepositSize)
	if err != nil {
		t.Fatalf("ProcessDeposit: %+v", err)
	}
	for epoch := externalapi.Epoch(1); epoch <= epochs; epoch++ {
		err := state.InitializeEpoch(params.EpochStartHeight(epoch))
		if err != nil {
			t.Fatalf("InitializeEpoch: %+v", err)
		}
	}
	return state
}

func TestPutAndGet(t *testing.T) {
	// A cache of a single entry makes the second Get read from the database.
	store, _, teardownFunc := prepareStoreForTest(t, "TestPutAndGet", 1)
	defer teardownFunc()

	states := map[byte]*finalitystate.FinalizationState{
		1: testState(t, 2),
		2: testState(t, 5),
	}
	for b, state := range states {
		err := store.Put(testHash(b), state)
		if err != nil {
			t.Fatalf("Put: %+v", err)
		}
	}

	for b, expected := range states {
		state, err := store.Get(testHash(b))
		if err != nil {
			t.Fatalf("Get(%d): %+v", b, err)
		}
		if !state.Equal(expected) {
			t.Fatalf("Get(%d): got %s, want %s", b, spew.Sdump(state.Info()), spew.Sdump(expected.Info()))
		}
	}

	_, err := store.Get(testHash(3))
	if !database.IsNotFoundError(err) {
		t.Fatalf("expected a not found error, got %v", err)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	store, _, teardownFunc := prepareStoreForTest(t, "TestGetReturnsCopy", 10)
	defer teardownFunc()

	state := testState(t, 1)
	err := store.Put(testHash(1), state)
	if err != nil {
		t.Fatalf("Put: %+v", err)
	}
	err = state.InitializeEpoch(state.Params().EpochStartHeight(2))
	if err != nil {
		t.Fatalf("InitializeEpoch: %+v", err)
	}

	stored, err := store.Get(testHash(1))
	if err != nil {
		t.Fatalf("Get: %+v", err)
	}
	if stored.CurrentEpoch() != 1 {
		t.Fatalf("mutating a state after Put changed the stored state")
	}
	err = stored.InitializeEpoch(stored.Params().EpochStartHeight(2))
	if err != nil {
		t.Fatalf("InitializeEpoch: %+v", err)
	}
	stored, err = store.Get(testHash(1))
	if err != nil {
		t.Fatalf("Get: %+v", err)
	}
	if stored.CurrentEpoch() != 1 {
		t.Fatalf("mutating a returned state changed the stored state")
	}
}

func TestDeleteAndBlockHashes(t *testing.T) {
	store, db, teardownFunc := prepareStoreForTest(t, "TestDeleteAndBlockHashes", 10)
	defer teardownFunc()

	for b := byte(1); b <= 4; b++ {
		err := store.Put(testHash(b), testState(t, externalapi.Epoch(b)))
		if err != nil {
			t.Fatalf("Put: %+v", err)
		}
	}
	// A key outside of the store's bucket must not be listed.
	err := db.Put(database.MakeBucket([]byte("other")).Key(testHash(9).ByteSlice()), []byte{1})
	if err != nil {
		t.Fatalf("Put: %+v", err)
	}

	err = store.Delete([]*externalapi.DomainHash{testHash(2), testHash(3)})
	if err != nil {
		t.Fatalf("Delete: %+v", err)
	}

	for b, expected := range map[byte]bool{1: true, 2: false, 3: false, 4: true} {
		has, err := store.Has(testHash(b))
		if err != nil {
			t.Fatalf("Has: %+v", err)
		}
		if has != expected {
			t.Errorf("Has(%d): got %t, want %t", b, has, expected)
		}
	}

	blockHashes, err := store.BlockHashes()
	if err != nil {
		t.Fatalf("BlockHashes: %+v", err)
	}
	if len(blockHashes) != 2 || !blockHashes[0].Equal(testHash(1)) || !blockHashes[1].Equal(testHash(4)) {
		t.Fatalf("unexpected block hashes %v", blockHashes)
	}
}

func TestCorruptState(t *testing.T) {
	store, db, teardownFunc := prepareStoreForTest(t, "TestCorruptState", 1)
	defer teardownFunc()

	for b := byte(1); b <= 3; b++ {
		err := store.Put(testHash(b), testState(t, 3))
		if err != nil {
			t.Fatalf("Put: %+v", err)
		}
	}

	// Neither state is cached anymore.
	key := store.(*finalityStateStore).hashAsKey(testHash(1))
	record, err := db.Get(key)
	if err != nil {
		t.Fatalf("Get: %+v", err)
	}
	record[0] ^= 0xff
	err = db.Put(key, record)
	if err != nil {
		t.Fatalf("Put: %+v", err)
	}
	err = db.Put(store.(*finalityStateStore).hashAsKey(testHash(2)), record[:externalapi.DomainHashSize-1])
	if err != nil {
		t.Fatalf("Put: %+v", err)
	}

	for b := byte(1); b <= 2; b++ {
		_, err = store.Get(testHash(b))
		if !errors.Is(err, ErrCorruptState) {
			t.Errorf("Get(%d): expected ErrCorruptState, got %v", b, err)
		}
	}
	if _, err := store.Get(testHash(3)); err != nil {
		t.Fatalf("Get(3): %+v", err)
	}
}
