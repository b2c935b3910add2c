package statelet

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestFetchOne_Success(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// the fetching flag must be raised while the producer runs
	var flagDuringProduce bool
	produce := func(context.Context) (json.RawMessage, error) {
		flagDuringProduce = store.Fetching().Read()
		return json.RawMessage(`{"id":1,"name":"a"}`), nil
	}

	got, err := store.FetchOne(ctx, produce)
	if err != nil {
		t.Fatalf("FetchOne() error = %v", err)
	}

	if !flagDuringProduce {
		t.Error("Fetching() = false during producer, want true")
	}
	if got != (testItem{ID: 1, Name: "a"}) {
		t.Errorf("FetchOne() = %+v, want {1 a}", got)
	}
	if item := store.Item().Read(); item != got {
		t.Errorf("Item() = %+v, want %+v", item, got)
	}
	if store.Fetching().Read() {
		t.Error("Fetching() = true after settlement, want false")
	}
}

func TestFetchOne_ProducerFailure(t *testing.T) {
	store := newTestStore(t)
	store.item.Set(testItem{ID: 9, Name: "cached"})
	boom := errors.New("network down")

	_, err := store.FetchOne(context.Background(), failingProducer(boom))
	if !errors.Is(err, boom) {
		t.Fatalf("FetchOne() error = %v, want wrapped %v", err, boom)
	}

	// a failed refresh must not destroy cached data or touch the error channel
	if got := store.Item().Read(); got.Name != "cached" {
		t.Errorf("Item() = %+v, want cached value intact", got)
	}
	if store.LastError().Read() != nil {
		t.Error("LastError() written by a read pipeline")
	}
	if store.Fetching().Read() {
		t.Error("Fetching() = true after failure, want false")
	}
}

func TestFetchOne_TransformFailure(t *testing.T) {
	store := newTestStore(t)

	_, err := store.FetchOne(context.Background(), producerOf(`"not an object"`))
	if err == nil {
		t.Fatal("expected transform error, got nil")
	}
	if store.Fetching().Read() {
		t.Error("Fetching() = true after transform failure, want false")
	}
	if store.LastError().Read() != nil {
		t.Error("LastError() written by a read pipeline")
	}
}

func TestFetchList_Success(t *testing.T) {
	store := newTestStore(t)

	got, err := store.FetchList(context.Background(), producerOf(`[{"id":1,"name":"a"},{"id":2,"name":"b"}]`))
	if err != nil {
		t.Fatalf("FetchList() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("FetchList() returned %d items, want 2", len(got))
	}
	if list := store.List().Read(); len(list) != 2 || list[0].ID != 1 || list[1].ID != 2 {
		t.Errorf("List() = %v, want fetch order preserved", list)
	}
	if store.Fetching().Read() {
		t.Error("Fetching() = true after settlement, want false")
	}
}

func TestFetchList_EmptyPayload(t *testing.T) {
	store := newTestStore(t)

	got, err := store.FetchList(context.Background(), producerOf(`[]`))
	if err != nil {
		t.Fatalf("FetchList() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("FetchList() = %v, want empty list", got)
	}
}

func TestFetchList_FailureLeavesListUnchanged(t *testing.T) {
	store := newTestStore(t)
	cached := []testItem{{ID: 1, Name: "a"}}
	store.list.Set(cached)

	_, err := store.FetchList(context.Background(), failingProducer(errors.New("boom")))
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	list := store.List().Read()
	if len(list) != 1 || list[0] != cached[0] {
		t.Errorf("List() = %v, want pre-call value %v", list, cached)
	}
	if store.Fetching().Read() {
		t.Error("Fetching() = true after failure, want false")
	}
}

func TestFetchKeyedList_DefaultKey(t *testing.T) {
	store := newTestStore(t)
	payload := `{"count":2,"results":[{"id":1},{"id":2}]}`

	got, err := store.FetchKeyedList(context.Background(), producerOf(payload))
	if err != nil {
		t.Fatalf("FetchKeyedList() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("FetchKeyedList() returned %d items, want 2", len(got))
	}
	if string(store.Response().Read()) != payload {
		t.Error("Response() does not hold the raw envelope")
	}
}

func TestFetchKeyedList_CustomKey(t *testing.T) {
	store := newTestStore(t)

	got, err := store.FetchKeyedList(context.Background(),
		producerOf(`{"data":{"items":[{"id":7}]}}`),
		WithKey[testItem]("data.items"),
	)
	if err != nil {
		t.Fatalf("FetchKeyedList() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != 7 {
		t.Errorf("FetchKeyedList() = %v, want [{7}]", got)
	}
}

func TestFetchKeyedList_StoreLevelKey(t *testing.T) {
	store := newTestStore(t, WithListKey[testItem]("data"))

	got, err := store.FetchKeyedList(context.Background(), producerOf(`{"data":[{"id":3}]}`))
	if err != nil {
		t.Fatalf("FetchKeyedList() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != 3 {
		t.Errorf("FetchKeyedList() = %v, want [{3}]", got)
	}
}

func TestFetchKeyedList_MissingKey(t *testing.T) {
	store := newTestStore(t)
	store.list.Set([]testItem{{ID: 1}})

	_, err := store.FetchKeyedList(context.Background(), producerOf(`{"other":[]}`))
	if err == nil {
		t.Fatal("expected error for missing key, got nil")
	}
	if len(store.List().Read()) != 1 {
		t.Error("List() changed by a failed keyed fetch")
	}
	if store.Fetching().Read() {
		t.Error("Fetching() = true after failure, want false")
	}
}

func TestCreate_AppendsByDefault(t *testing.T) {
	store := newTestStore(t)
	store.list.Set([]testItem{{ID: 1, Name: "a"}})

	var flagDuringProduce bool
	produce := func(context.Context) (json.RawMessage, error) {
		flagDuringProduce = store.Saving().Read()
		return json.RawMessage(`{"id":2,"name":"b"}`), nil
	}

	created, err := store.Create(context.Background(), produce)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if !flagDuringProduce {
		t.Error("Saving() = false during producer, want true")
	}
	if created.ID != 2 {
		t.Errorf("Create() = %+v, want id 2", created)
	}

	list := store.List().Read()
	if len(list) != 2 || list[len(list)-1].ID != 2 {
		t.Errorf("List() = %v, want new entity as final element", list)
	}
	if store.Item().Read() != created {
		t.Errorf("Item() = %+v, want created entity", store.Item().Read())
	}
	if string(store.Response().Read()) != `{"id":2,"name":"b"}` {
		t.Error("Response() does not hold the raw payload")
	}
	if store.Saving().Read() {
		t.Error("Saving() = true after settlement, want false")
	}
}

func TestCreate_HeadInsertion(t *testing.T) {
	store := newTestStore(t)
	store.list.Set([]testItem{{ID: 1, Name: "a"}})

	created, err := store.Create(context.Background(), producerOf(`{"id":2,"name":"b"}`),
		WithPosition[testItem](PositionHead),
	)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	list := store.List().Read()
	if len(list) != 2 || list[0] != created {
		t.Errorf("List() = %v, want created entity at index 0", list)
	}
}

func TestCreate_Failure(t *testing.T) {
	store := newTestStore(t)
	boom := errors.New("422 unprocessable")

	_, err := store.Create(context.Background(), failingProducer(boom))
	if !errors.Is(err, boom) {
		t.Fatalf("Create() error = %v, want wrapped %v", err, boom)
	}

	if got := store.LastError().Read(); !errors.Is(got, boom) {
		t.Errorf("LastError() = %v, want the raised error", got)
	}
	if store.Saving().Read() {
		t.Error("Saving() = true after failure, want false")
	}
	if len(store.List().Read()) != 0 {
		t.Error("List() changed by a failed create")
	}
}

func TestCreate_TransformFailureIsGuarded(t *testing.T) {
	store := newTestStore(t)

	errorWrites := 0
	sub := store.LastError().Subscribe(func(err error) {
		if err != nil {
			errorWrites++
		}
	})
	defer sub.Cancel()

	_, err := store.Create(context.Background(), producerOf(`[1,2,3]`))
	if err == nil {
		t.Fatal("expected transform error, got nil")
	}

	if errorWrites != 1 {
		t.Errorf("error channel written %d times, want exactly 1", errorWrites)
	}
	if store.Item().Read() != (testItem{}) {
		t.Error("Item() written despite guarded failure")
	}
	if store.Saving().Read() {
		t.Error("Saving() = true after failure, want false")
	}
}

func TestUpdate_ReplacesInList(t *testing.T) {
	store := newTestStore(t)
	store.list.Set([]testItem{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}})

	updated, err := store.Update(context.Background(), producerOf(`{"id":2,"name":"B"}`))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != "B" {
		t.Errorf("Update() = %+v, want name B", updated)
	}

	list := store.List().Read()
	if len(list) != 2 || list[0].Name != "a" || list[1].Name != "B" {
		t.Errorf("List() = %v, want [{1 a} {2 B}] (order preserved, value replaced)", list)
	}
	if store.Item().Read() != updated {
		t.Errorf("Item() = %+v, want updated entity", store.Item().Read())
	}
}

func TestUpdate_UnknownIDAppends(t *testing.T) {
	store := newTestStore(t)
	store.list.Set([]testItem{{ID: 1, Name: "a"}})

	if _, err := store.Update(context.Background(), producerOf(`{"id":5,"name":"e"}`)); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	list := store.List().Read()
	if len(list) != 2 || list[1].ID != 5 {
		t.Errorf("List() = %v, want id 5 appended", list)
	}
}

func TestUpdateMany(t *testing.T) {
	store := newTestStore(t)
	store.list.Set([]testItem{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}})
	store.item.Set(testItem{ID: 1, Name: "a"})

	updated, err := store.UpdateMany(context.Background(), producerOf(`[{"id":2,"name":"B"},{"id":3,"name":"c"}]`))
	if err != nil {
		t.Fatalf("UpdateMany() error = %v", err)
	}
	if len(updated) != 2 {
		t.Errorf("UpdateMany() returned %d items, want 2", len(updated))
	}

	list := store.List().Read()
	if len(list) != 3 || list[1].Name != "B" || list[2].ID != 3 {
		t.Errorf("List() = %v, want batch upserted in order", list)
	}

	// bulk updates never touch the item channel
	if got := store.Item().Read(); got.Name != "a" {
		t.Errorf("Item() = %+v, want untouched", got)
	}
}

func TestUpdateMany_Failure(t *testing.T) {
	store := newTestStore(t)
	boom := errors.New("bulk rejected")

	_, err := store.UpdateMany(context.Background(), failingProducer(boom))
	if !errors.Is(err, boom) {
		t.Fatalf("UpdateMany() error = %v, want wrapped %v", err, boom)
	}
	if got := store.LastError().Read(); !errors.Is(got, boom) {
		t.Errorf("LastError() = %v, want the raised error", got)
	}
	if store.Saving().Read() {
		t.Error("Saving() = true after failure, want false")
	}
}

func TestDelete_RemovesFromList(t *testing.T) {
	store := newTestStore(t)
	store.list.Set([]testItem{{ID: 1}, {ID: 2}})

	if err := store.Delete(context.Background(), producerOf(`{"id":1}`), 1); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	list := store.List().Read()
	if len(list) != 1 || list[0].ID != 2 {
		t.Errorf("List() = %v, want [{2}]", list)
	}
	if store.Saving().Read() {
		t.Error("Saving() = true after settlement, want false")
	}
}

func TestDelete_MissingIDIsNoOp(t *testing.T) {
	store := newTestStore(t)
	store.list.Set([]testItem{{ID: 1}})

	if err := store.Delete(context.Background(), producerOf(`{}`), 99); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(store.List().Read()) != 1 {
		t.Error("List() changed by deleting an absent id")
	}
}

func TestDelete_Failure(t *testing.T) {
	store := newTestStore(t)
	store.list.Set([]testItem{{ID: 1}})
	boom := errors.New("403 forbidden")

	err := store.Delete(context.Background(), failingProducer(boom), 1)
	if !errors.Is(err, boom) {
		t.Fatalf("Delete() error = %v, want wrapped %v", err, boom)
	}
	if len(store.List().Read()) != 1 {
		t.Error("List() changed by a failed delete")
	}
	if got := store.LastError().Read(); !errors.Is(got, boom) {
		t.Errorf("LastError() = %v, want the raised error", got)
	}
}

func TestCallOptions_Validation(t *testing.T) {
	store := newTestStore(t)

	tests := []struct {
		name string
		opt  CallOption[testItem]
	}{
		{"nil factory", WithFactory[testItem](nil)},
		{"empty key", WithKey[testItem]("")},
		{"invalid position", WithPosition[testItem]("middle")},
		{"nil item target", WithItemTarget[testItem](nil)},
		{"nil list target", WithListTarget[testItem](nil)},
		{"nil store target", WithStoreTargets[testItem](nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.FetchOne(context.Background(), producerOf(`{}`), tt.opt); err == nil {
				t.Error("expected option error, got nil")
			}
		})
	}
}

func TestWithItemTarget_RedirectsItemWrite(t *testing.T) {
	store := newTestStore(t)
	selected := NewChannel(testItem{})

	got, err := store.FetchOne(context.Background(), producerOf(`{"id":4,"name":"d"}`),
		WithItemTarget[testItem](selected),
	)
	if err != nil {
		t.Fatalf("FetchOne() error = %v", err)
	}

	if selected.Read() != got {
		t.Errorf("target channel = %+v, want %+v", selected.Read(), got)
	}
	if store.Item().Read() != (testItem{}) {
		t.Error("store's own item channel written despite target override")
	}
}

func TestWithListTarget_RedirectsListReconciliation(t *testing.T) {
	store := newTestStore(t)
	archived := NewChannel([]testItem{{ID: 1, Name: "old"}})

	if _, err := store.Update(context.Background(), producerOf(`{"id":1,"name":"new"}`),
		WithListTarget[testItem](archived),
	); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if got := archived.Read(); len(got) != 1 || got[0].Name != "new" {
		t.Errorf("target list = %v, want reconciled against the target channel", got)
	}
	if len(store.List().Read()) != 0 {
		t.Error("store's own list channel written despite target override")
	}
}

func TestWithStoreTargets_CascadesToOtherStore(t *testing.T) {
	drafts := newTestStore(t)
	all := newTestStore(t)
	all.list.Set([]testItem{{ID: 1, Name: "a"}})

	created, err := drafts.Create(context.Background(), producerOf(`{"id":2,"name":"b"}`),
		WithStoreTargets[testItem](all),
	)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if list := all.List().Read(); len(list) != 2 || list[1] != created {
		t.Errorf("target store list = %v, want created entity appended", list)
	}
	if all.Item().Read() != created {
		t.Error("target store item channel not written")
	}
	if len(drafts.List().Read()) != 0 {
		t.Error("invoking store's list written despite store target")
	}
	// in-flight flags stay on the invoking store
	if all.Saving().Read() {
		t.Error("target store's saving flag raised")
	}
}

func TestWithFactory_OverridesPerCall(t *testing.T) {
	store := newTestStore(t)

	upper := Factory[testItem](func(raw json.RawMessage) (testItem, error) {
		item, err := JSONFactory[testItem]()(raw)
		if err != nil {
			return item, err
		}
		item.Name = "custom:" + item.Name
		return item, nil
	})

	got, err := store.FetchOne(context.Background(), producerOf(`{"id":1,"name":"a"}`),
		WithFactory[testItem](upper),
	)
	if err != nil {
		t.Fatalf("FetchOne() error = %v", err)
	}
	if got.Name != "custom:a" {
		t.Errorf("FetchOne() = %+v, want per-call factory applied", got)
	}
}
