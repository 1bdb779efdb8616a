package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/DS9cl/Web/internal/model"
)

func openTestStores(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := OpenFile(filepath.Join(t.TempDir(), "data.json"))
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	return map[string]Store{
		"file":   fs,
		"memory": NewMemory(),
	}
}

func TestOpenFileInitializesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if _, err := OpenFile(path); err != nil {
		t.Fatalf("OpenFile: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading initialized file: %v", err)
	}
	var d model.Dataset
	if err := json.Unmarshal(raw, &d); err != nil {
		t.Fatalf("initialized file is not valid JSON: %v", err)
	}
	if d.Users == nil || d.Servers == nil || d.Messages == nil {
		t.Fatalf("initialized dataset has nil collections: %+v", d)
	}
	if len(d.Users)+len(d.Servers)+len(d.Messages) != 0 {
		t.Fatalf("initialized dataset is not empty: %+v", d)
	}
}

func TestOpenFileKeepsExistingData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	s, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	err = s.Update(func(d *model.Dataset) error {
		d.Users = append(d.Users, model.User{ID: 1, Username: "alice"})
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	// Reopening must not reinitialize.
	s2, err := OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	d, err := s2.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(d.Users) != 1 || d.Users[0].Username != "alice" {
		t.Fatalf("existing data lost on reopen: %+v", d.Users)
	}
}

func TestUpdateRoundTrip(t *testing.T) {
	for name, s := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			msg := model.Message{ID: 42, Username: "alice", Text: "hi", ServerID: 1, ChannelID: 1}
			err := s.Update(func(d *model.Dataset) error {
				d.Messages = append(d.Messages, msg)
				return nil
			})
			if err != nil {
				t.Fatalf("Update: %v", err)
			}

			d, err := s.ReadAll()
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if len(d.Messages) != 1 {
				t.Fatalf("message count = %d, want 1", len(d.Messages))
			}
			if d.Messages[0] != msg {
				t.Fatalf("round trip changed message: got %+v want %+v", d.Messages[0], msg)
			}
		})
	}
}

func TestUpdateErrorDiscardsChanges(t *testing.T) {
	boom := errors.New("boom")
	for name, s := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			err := s.Update(func(d *model.Dataset) error {
				d.Users = append(d.Users, model.User{ID: 1, Username: "ghost"})
				return boom
			})
			if !errors.Is(err, boom) {
				t.Fatalf("Update error = %v, want boom", err)
			}

			d, err := s.ReadAll()
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if len(d.Users) != 0 {
				t.Fatalf("failed update was persisted: %+v", d.Users)
			}
		})
	}
}

func TestReadAllReturnsCopy(t *testing.T) {
	for name, s := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			err := s.Update(func(d *model.Dataset) error {
				d.Servers = append(d.Servers, model.Server{
					ID: 1, Name: "Dev", Channels: []model.Channel{{ID: 1, Name: "general"}},
				})
				return nil
			})
			if err != nil {
				t.Fatalf("Update: %v", err)
			}

			d, _ := s.ReadAll()
			d.Servers[0].Name = "mutated"
			d.Servers[0].Channels[0].Name = "mutated"

			fresh, _ := s.ReadAll()
			if fresh.Servers[0].Name != "Dev" || fresh.Servers[0].Channels[0].Name != "general" {
				t.Fatalf("mutating a ReadAll copy leaked into the store: %+v", fresh.Servers[0])
			}
		})
	}
}

// Interleaved read-modify-write cycles must not lose updates: every
// appended message has to survive.
func TestConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	const writers = 20
	for name, s := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for i := 0; i < writers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					err := s.Update(func(d *model.Dataset) error {
						d.Messages = append(d.Messages, model.Message{
							ID: int64(i), Username: "w", Text: "x", ServerID: 1, ChannelID: 1,
						})
						return nil
					})
					if err != nil {
						t.Errorf("Update: %v", err)
					}
				}(i)
			}
			wg.Wait()

			d, err := s.ReadAll()
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if len(d.Messages) != writers {
				t.Fatalf("message count = %d, want %d (lost update)", len(d.Messages), writers)
			}
		})
	}
}

func TestCorruptFileFailsReads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	s, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupting file: %v", err)
	}

	if _, err := s.ReadAll(); err == nil {
		t.Fatal("ReadAll on corrupt file succeeded, want error")
	}
	err = s.Update(func(*model.Dataset) error { return nil })
	if err == nil {
		t.Fatal("Update on corrupt file succeeded, want error")
	}
}
