// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/grantmatch/core"
	"github.com/poiesic/grantmatch/storage"
)

// GrantRepository implements storage.GrantRepository for BadgerDB.
type GrantRepository struct {
	backend *Backend
}

var _ storage.GrantRepository = (*GrantRepository)(nil)

// NewGrantRepository creates a new GrantRepository.
func NewGrantRepository(backend *Backend) (*GrantRepository, error) {
	if backend == nil {
		return nil, storage.ErrBackendRequired
	}
	return &GrantRepository{backend: backend}, nil
}

// Close releases repository resources. The backend itself is shared and is
// closed separately.
func (r *GrantRepository) Close() error {
	return nil
}

// AddGrants adds or overwrites grants, keyed by Grant.Id.
// Every grant is validated up front; on any validation failure nothing is
// written.
func (r *GrantRepository) AddGrants(ctx context.Context, grants ...*core.Grant) error {
	for _, grant := range grants {
		if err := grant.Validate(); err != nil {
			return fmt.Errorf("grant %q: %w", grant.Id, err)
		}
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, grant := range grants {
			key := makeGrantKey(grant.Id)
			if err := tx.Set(key, storage.MarshalGrant(grant)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetGrant retrieves a single grant by ID.
func (r *GrantRepository) GetGrant(ctx context.Context, id string) (*core.Grant, error) {
	var grant *core.Grant
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeGrantKey(id))
		if err == badger.ErrKeyNotFound {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			grant, err = storage.UnmarshalGrant(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return grant, nil
}

// ListOpen retrieves every grant whose closing date has not passed,
// narrowed by the filter.
func (r *GrantRepository) ListOpen(ctx context.Context, filter storage.GrantFilter) ([]*core.Grant, error) {
	now := filter.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var grants []*core.Grant
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = grantScanPrefix()
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				grant, err := storage.UnmarshalGrant(val)
				if err != nil {
					return err
				}
				if !grant.IsOpen(now) {
					return nil
				}
				if !matchesOrganizations(grant, filter.Organizations) {
					return nil
				}
				if !matchesCategory(grant, filter.Category) {
					return nil
				}
				grants = append(grants, grant)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return grants, nil
}

// Count reports the total number of stored grants, open or not.
func (r *GrantRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = grantScanPrefix()
		opts.PrefetchValues = false
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// matchesOrganizations checks the funder filter, case-insensitively.
// An empty filter matches everything.
func matchesOrganizations(grant *core.Grant, organizations []string) bool {
	if len(organizations) == 0 {
		return true
	}
	for _, org := range organizations {
		if strings.EqualFold(grant.Organization, org) {
			return true
		}
	}
	return false
}

// matchesCategory checks the applicant-class filter against the grant's
// eligible-organization entries.
func matchesCategory(grant *core.Grant, category core.Category) bool {
	if category == "" || category == core.CategoryAll {
		return true
	}
	needle := strings.ToLower(string(category))
	for _, eligible := range grant.EligibleOrgs {
		if strings.Contains(strings.ToLower(eligible), needle) {
			return true
		}
	}
	return false
}
