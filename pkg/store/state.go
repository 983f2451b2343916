/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-cpap/pkg/extract"
	"jinr.ru/greenlab/go-cpap/pkg/log"
	"jinr.ru/greenlab/go-cpap/pkg/timeconv"
)

const (
	SessionsBucket = "sessions"
	OpenTimeout    = time.Second
)

// Session is one entry of the index of extracted files.
type Session struct {
	Key         string `json:"key"`
	SessionID   int64  `json:"sessionID"`
	MachineID   int64  `json:"machineID"`
	StartTimeMs int64  `json:"startTimeMs,omitempty"`
	StartTime   string `json:"startTime,omitempty"`
	EndTimeMs   int64  `json:"endTimeMs,omitempty"`
	EndTime     string `json:"endTime,omitempty"`
	Source      string `json:"source"`
	Output      string `json:"output,omitempty"`
	Set         string `json:"set"`
	Pending     int    `json:"pending,omitempty"`
	Warnings    int    `json:"warnings,omitempty"`
	ExtractedAt string `json:"extractedAt"`
}

func (s *Session) String() string {
	result, err := yaml.Marshal(s)
	if err != nil {
		log.Error("Error occured while marshaling session, %s", err)
		return ""
	}
	return fmt.Sprintf("---\n%s", string(result))
}

// SessionKey orders the index by machine and then by session.
func SessionKey(machineID, sessionID int64) string {
	return fmt.Sprintf("%010d-%010d", machineID, sessionID)
}

// NewSession builds an index entry from an extraction.
func NewSession(e *extract.Extraction, output string) *Session {
	s := &Session{
		Source:      e.Source,
		Output:      output,
		Set:         e.Set,
		Pending:     e.PendingCount(),
		Warnings:    e.Warnings(),
		ExtractedAt: time.Now().UTC().Format(time.RFC3339),
	}
	s.SessionID, _ = e.SessionID()
	s.MachineID, _ = e.MachineID()
	if start, ok := e.StartTime(); ok {
		s.StartTimeMs = start
		s.StartTime = timeconv.Normalize(start, nil)
	}
	if end, ok := e.EndTime(); ok {
		s.EndTimeMs = end
		s.EndTime = timeconv.Normalize(end, nil)
	}
	s.Key = SessionKey(s.MachineID, s.SessionID)
	return s
}

type State struct {
	DB *bbolt.DB
}

// NewState opens (or creates) the index database.
func NewState(path string) (*State, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: OpenTimeout})
	if err != nil {
		return nil, err
	}
	s := &State{
		DB: db,
	}
	if err := s.CreateBucket(SessionsBucket); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close ...
func (s *State) Close() error {
	return s.DB.Close()
}

// CreateBucket ...
func (s *State) CreateBucket(name string) error {
	return s.DB.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(name))
		return err
	})
}

// PutSession stores or replaces an index entry.
func (s *State) PutSession(session *Session) error {
	log.Debug("Setting session: %s", session.Key)
	return s.DB.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(SessionsBucket))
		if b == nil {
			return ErrBucketNotFound{Name: SessionsBucket}
		}
		data, err := yaml.Marshal(session)
		if err != nil {
			return err
		}
		return b.Put([]byte(session.Key), data)
	})
}

// GetSession ...
func (s *State) GetSession(key string) (*Session, error) {
	log.Debug("Getting session: %s", key)
	session := &Session{}
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(SessionsBucket))
		if b == nil {
			return ErrBucketNotFound{Name: SessionsBucket}
		}
		data := b.Get([]byte(key))
		if data == nil {
			return ErrSessionNotFound{Key: key}
		}
		return yaml.Unmarshal(data, session)
	}); err != nil {
		return nil, err
	}
	return session, nil
}

// ListSessions returns all entries ordered by key.
func (s *State) ListSessions() ([]*Session, error) {
	log.Debug("Getting all sessions")
	var sessions []*Session
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(SessionsBucket))
		if b == nil {
			return ErrBucketNotFound{Name: SessionsBucket}
		}
		return b.ForEach(func(k, v []byte) error {
			session := &Session{}
			if err := yaml.Unmarshal(v, session); err != nil {
				log.Error("Error while unmarshalling session %s: %s", k, err)
				return err
			}
			sessions = append(sessions, session)
			return nil
		})
	}); err != nil {
		return nil, err
	}
	return sessions, nil
}

// FindSessions returns entries with the given session ID from any machine.
func (s *State) FindSessions(sessionID int64) ([]*Session, error) {
	all, err := s.ListSessions()
	if err != nil {
		return nil, err
	}
	var found []*Session
	for _, session := range all {
		if session.SessionID == sessionID {
			found = append(found, session)
		}
	}
	if len(found) == 0 {
		return nil, ErrSessionNotFound{Key: fmt.Sprintf("%d", sessionID)}
	}
	return found, nil
}
