package core

import (
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written mus-format serializers for the domain types. Field order is
// part of the storage format and must not change without a migration.

// IDMUS serializes ID values.
var IDMUS = idMUS{}

// CandidateMUS serializes Candidate records.
var CandidateMUS = candidateMUS{}

// DesiredCityMUS serializes DesiredCity records.
var DesiredCityMUS = desiredCityMUS{}

// CheckpointMUS serializes Checkpoint records.
var CheckpointMUS = checkpointMUS{}

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

type candidateMUS struct{}

func (candidateMUS) Marshal(c Candidate, bs []byte) (n int) {
	n = IDMUS.Marshal(c.Id, bs)
	n += ord.String.Marshal(c.FullName, bs[n:])
	n += ord.String.Marshal(c.LocationText, bs[n:])
	n += varint.Uint64.Marshal(uint64(len(c.Positions)), bs[n:])
	for _, p := range c.Positions {
		n += ord.String.Marshal(p, bs[n:])
	}
	n += ord.String.Marshal(c.Bio, bs[n:])
	n += ord.String.Marshal(c.Document, bs[n:])
	n += varint.Uint64.Marshal(c.SearchIndex, bs[n:])
	n += ord.Bool.Marshal(c.Featured, bs[n:])
	n += marshalTime(c.CreatedAt, bs[n:])
	n += marshalTime(c.InsertedAt, bs[n:])
	n += marshalTime(c.UpdatedAt, bs[n:])
	n += varint.Uint64.Marshal(uint64(len(c.Cities)), bs[n:])
	for _, id := range c.Cities {
		n += IDMUS.Marshal(id, bs[n:])
	}
	return n
}

func (candidateMUS) Unmarshal(bs []byte) (c Candidate, n int, err error) {
	var n1 int
	if c.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if c.FullName, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.LocationText, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	var count uint64
	if count, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if count > 0 {
		c.Positions = make([]string, count)
		for i := range c.Positions {
			if c.Positions[i], n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
				return c, n + n1, err
			}
			n += n1
		}
	}
	if c.Bio, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Document, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.SearchIndex, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Featured, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.CreatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.InsertedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.UpdatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if count, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if count > 0 {
		c.Cities = make([]ID, count)
		for i := range c.Cities {
			if c.Cities[i], n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
				return c, n + n1, err
			}
			n += n1
		}
	}
	return c, n, nil
}

func (candidateMUS) Size(c Candidate) (size int) {
	size = IDMUS.Size(c.Id)
	size += ord.String.Size(c.FullName)
	size += ord.String.Size(c.LocationText)
	size += varint.Uint64.Size(uint64(len(c.Positions)))
	for _, p := range c.Positions {
		size += ord.String.Size(p)
	}
	size += ord.String.Size(c.Bio)
	size += ord.String.Size(c.Document)
	size += varint.Uint64.Size(c.SearchIndex)
	size += ord.Bool.Size(c.Featured)
	size += sizeTime(c.CreatedAt)
	size += sizeTime(c.InsertedAt)
	size += sizeTime(c.UpdatedAt)
	size += varint.Uint64.Size(uint64(len(c.Cities)))
	for _, id := range c.Cities {
		size += IDMUS.Size(id)
	}
	return size
}

type desiredCityMUS struct{}

func (desiredCityMUS) Marshal(c DesiredCity, bs []byte) (n int) {
	n = IDMUS.Marshal(c.Id, bs)
	n += ord.String.Marshal(c.Name, bs[n:])
	n += marshalCoord(c.Lat, bs[n:])
	n += marshalCoord(c.Lon, bs[n:])
	n += marshalTime(c.InsertedAt, bs[n:])
	n += marshalTime(c.UpdatedAt, bs[n:])
	return n
}

func (desiredCityMUS) Unmarshal(bs []byte) (c DesiredCity, n int, err error) {
	var n1 int
	if c.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if c.Name, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Lat, n1, err = unmarshalCoord(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Lon, n1, err = unmarshalCoord(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.InsertedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.UpdatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	return c, n, nil
}

func (desiredCityMUS) Size(c DesiredCity) (size int) {
	size = IDMUS.Size(c.Id)
	size += ord.String.Size(c.Name)
	size += sizeCoord(c.Lat)
	size += sizeCoord(c.Lon)
	size += sizeTime(c.InsertedAt)
	size += sizeTime(c.UpdatedAt)
	return size
}

type checkpointMUS struct{}

func (checkpointMUS) Marshal(c Checkpoint, bs []byte) (n int) {
	n = ord.String.Marshal(c.ProcessorType, bs)
	n += IDMUS.Marshal(c.LastID, bs[n:])
	n += marshalTime(c.UpdatedAt, bs[n:])
	return n
}

func (checkpointMUS) Unmarshal(bs []byte) (c Checkpoint, n int, err error) {
	var n1 int
	if c.ProcessorType, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if c.LastID, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.UpdatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	return c, n, nil
}

func (checkpointMUS) Size(c Checkpoint) (size int) {
	size = ord.String.Size(c.ProcessorType)
	size += IDMUS.Size(c.LastID)
	size += sizeTime(c.UpdatedAt)
	return size
}

// Timestamps are stored as Unix microseconds. The zero time round-trips
// through Equal, not ==.

func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	v, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(v).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

// Coordinates are stored as microdegrees.

func marshalCoord(deg float64, bs []byte) int {
	return varint.Int64.Marshal(int64(math.Round(deg*1e6)), bs)
}

func unmarshalCoord(bs []byte) (float64, int, error) {
	v, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return 0, n, err
	}
	return float64(v) / 1e6, n, nil
}

func sizeCoord(deg float64) int {
	return varint.Int64.Size(int64(math.Round(deg * 1e6)))
}
