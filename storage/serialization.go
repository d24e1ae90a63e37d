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


package storage

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/grantmatch/core"
)

// MarshalGrant serializes a Grant to MUS-format bytes.
func MarshalGrant(grant *core.Grant) []byte {
	buf := make([]byte, GrantMUS.Size(*grant))
	GrantMUS.Marshal(*grant, buf)
	return buf
}

// UnmarshalGrant deserializes a Grant from bytes.
func UnmarshalGrant(data []byte) (*core.Grant, error) {
	grant, _, err := GrantMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &grant, nil
}

// GrantMUS is the MUS serializer for core.Grant. Field order is fixed;
// adding fields means appending, never reordering.
var GrantMUS = grantMUS{}

type grantMUS struct{}

func (grantMUS) Size(g core.Grant) (size int) {
	size = ord.String.Size(g.Id)
	size += ord.String.Size(g.Title)
	size += ord.String.Size(g.Description)
	size += ord.String.Size(g.Organization)
	size += ord.String.Size(g.Eligibility)
	size += ord.String.Size(g.Evaluation)
	size += sizeStrings(g.Keywords)
	size += sizeStrings(g.Sectors)
	size += sizeStrings(g.EligibleOrgs)
	size += varint.Int64.Size(g.FundingMin)
	size += varint.Int64.Size(g.FundingMax)
	size += ord.String.Size(g.Currency)
	size += varint.Int.Size(len(g.Embedding))
	size += len(g.Embedding) * raw.Float32.Size(0)
	size += varint.Int64.Size(timeToMicro(g.OpensAt))
	size += varint.Int64.Size(timeToMicro(g.ClosesAt))
	return size
}

func (grantMUS) Marshal(g core.Grant, bs []byte) (n int) {
	n = ord.String.Marshal(g.Id, bs)
	n += ord.String.Marshal(g.Title, bs[n:])
	n += ord.String.Marshal(g.Description, bs[n:])
	n += ord.String.Marshal(g.Organization, bs[n:])
	n += ord.String.Marshal(g.Eligibility, bs[n:])
	n += ord.String.Marshal(g.Evaluation, bs[n:])
	n += marshalStrings(g.Keywords, bs[n:])
	n += marshalStrings(g.Sectors, bs[n:])
	n += marshalStrings(g.EligibleOrgs, bs[n:])
	n += varint.Int64.Marshal(g.FundingMin, bs[n:])
	n += varint.Int64.Marshal(g.FundingMax, bs[n:])
	n += ord.String.Marshal(g.Currency, bs[n:])
	n += varint.Int.Marshal(len(g.Embedding), bs[n:])
	for _, v := range g.Embedding {
		n += raw.Float32.Marshal(v, bs[n:])
	}
	n += varint.Int64.Marshal(timeToMicro(g.OpensAt), bs[n:])
	n += varint.Int64.Marshal(timeToMicro(g.ClosesAt), bs[n:])
	return n
}

func (grantMUS) Unmarshal(bs []byte) (g core.Grant, n int, err error) {
	var m int
	if g.Id, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if g.Title, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if g.Description, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if g.Organization, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if g.Eligibility, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if g.Evaluation, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if g.Keywords, m, err = unmarshalStrings(bs[n:]); err != nil {
		return
	}
	n += m
	if g.Sectors, m, err = unmarshalStrings(bs[n:]); err != nil {
		return
	}
	n += m
	if g.EligibleOrgs, m, err = unmarshalStrings(bs[n:]); err != nil {
		return
	}
	n += m
	if g.FundingMin, m, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if g.FundingMax, m, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if g.Currency, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m

	var count int
	if count, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	// Guard the allocation: each element occupies 4 bytes, so any count the
	// remaining data cannot hold marks a corrupt record.
	if count < 0 || count > len(bs[n:])/raw.Float32.Size(0) {
		err = ErrCorruptRecord
		return
	}
	if count > 0 {
		g.Embedding = make([]float32, count)
		for i := 0; i < count; i++ {
			if g.Embedding[i], m, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
				return
			}
			n += m
		}
	}

	var micros int64
	if micros, m, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	g.OpensAt = microToTime(micros)
	if micros, m, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	g.ClosesAt = microToTime(micros)

	return g, n, nil
}

func sizeStrings(values []string) (size int) {
	size = varint.Int.Size(len(values))
	for _, v := range values {
		size += ord.String.Size(v)
	}
	return size
}

func marshalStrings(values []string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(values), bs)
	for _, v := range values {
		n += ord.String.Marshal(v, bs[n:])
	}
	return n
}

func unmarshalStrings(bs []byte) (values []string, n int, err error) {
	var count, m int
	if count, n, err = varint.Int.Unmarshal(bs); err != nil {
		return
	}
	// Guard the allocation: each string costs at least its one-byte length
	// prefix, so a count beyond the remaining data marks a corrupt record.
	if count < 0 || count > len(bs[n:]) {
		return nil, n, ErrCorruptRecord
	}
	if count == 0 {
		return nil, n, nil
	}
	values = make([]string, count)
	for i := 0; i < count; i++ {
		if values[i], m, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return
		}
		n += m
	}
	return values, n, nil
}

// timeToMicro flattens a timestamp to UnixMicro, with zero times mapped to
// zero so open-ended closing dates survive a round trip.
func timeToMicro(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

func microToTime(micros int64) time.Time {
	if micros == 0 {
		return time.Time{}
	}
	return time.UnixMicro(micros).UTC()
}
