package badger

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"time"

	"github.com/poiesic/candidex/core"
	"github.com/poiesic/candidex/geo"
)

// Key prefixes for different data types
const (
	candidateRecordPrefix   = "canrec"
	candidateOrderPrefix    = "cansix"
	candidateCreatedPrefix  = "cancre"
	candidateFeaturedPrefix = "canfea"
	candidateTokenPrefix    = "cantok"
	candidateStalePrefix    = "cansta"
	cityCandidatePrefix     = "ctycan"
	candidateIDSeq          = "canrecseq"
	searchIndexSeq          = "cansixseq"
	cityRecordPrefix        = "ctyrec"
	cityNamePrefix          = "ctyna"
	cityCellPrefix          = "ctycel"
)

// makeCandidateKey generates a key for a candidate record by ID.
func makeCandidateKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", candidateRecordPrefix, id))
}

// parseCandidateKey extracts the ID from a candidate record key. Record IDs
// are written in decimal, so key order is not ID order.
func parseCandidateKey(key []byte) (core.ID, error) {
	id, err := strconv.ParseUint(string(key[len(candidateRecordPrefix)+1:]), 10, 64)
	if err != nil {
		return 0, err
	}
	return core.ID(id), nil
}

// makeOrderKey generates a composite key for the search order index.
// Format: prefix:searchIndex:id
func makeOrderKey(prefix string, searchIndex uint64, id core.ID) []byte {
	prefixBytes := []byte(prefix + ":")
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for search index + 8 bytes for ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], searchIndex)
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeMaxOrderKey generates the seek key for reverse iteration over an
// order index, positioned after every real entry.
func makeMaxOrderKey(prefix string) []byte {
	return makeOrderKey(prefix, ^uint64(0), core.ID(^uint64(0)))
}

// makeCreatedKey generates a composite key for the creation time index.
// Format: prefix:timestamp:id
func makeCreatedKey(createdAt time.Time, id core.ID) []byte {
	prefixBytes := []byte(candidateCreatedPrefix + ":")
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for timestamp + 8 bytes for ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAt.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialCreatedKey generates a partial key for creation range queries.
// Format: prefix:timestamp
func makePartialCreatedKey(createdAt time.Time) []byte {
	prefixBytes := []byte(candidateCreatedPrefix + ":")
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for timestamp
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAt.UnixMicro()))
	return buf
}

// makeTokenKey generates a composite key for an inverted index posting.
// Format: prefix:token:id
func makeTokenKey(token string, id core.ID) []byte {
	prefixBytes := []byte(candidateTokenPrefix + ":" + token + ":")
	prefixSize := len(prefixBytes)
	buf := make([]byte, prefixSize+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialTokenKey generates a partial key for posting scans.
// Format: prefix:token
func makePartialTokenKey(token string) []byte {
	return []byte(candidateTokenPrefix + ":" + token + ":")
}

// makeStaleKey generates a key for the stale document marker.
// Format: prefix:id
func makeStaleKey(id core.ID) []byte {
	prefixBytes := []byte(candidateStalePrefix + ":")
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeCityCandidateKey generates a composite key for the city to candidate
// side of the bridge. Format: prefix:cityID:candidateID
func makeCityCandidateKey(cityID, candidateID core.ID) []byte {
	prefixBytes := []byte(cityCandidatePrefix + ":")
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for cityID + 8 bytes for candidateID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(cityID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(candidateID))
	return buf
}

// makePartialCityCandidateKey generates a partial key for bridge queries.
// Format: prefix:cityID
func makePartialCityCandidateKey(cityID core.ID) []byte {
	prefixBytes := []byte(cityCandidatePrefix + ":")
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(cityID))
	return buf
}

// makeCityKey generates a key for a city record by ID.
func makeCityKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", cityRecordPrefix, id))
}

// makeCityNameKey generates a key for city lookup by normalized name.
// Format: prefix:slug
func makeCityNameKey(slug string) []byte {
	return []byte(cityNamePrefix + ":" + slug)
}

// makeCityCellKey generates a composite key for the spatial cell index.
// Format: prefix:cell:id
func makeCityCellKey(cell geo.Cell, id core.ID) []byte {
	prefixBytes := []byte(cityCellPrefix + ":")
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for cell + 8 bytes for ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(cell))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialCityCellKey generates a partial key for cell scans.
// Format: prefix:cell
func makePartialCityCellKey(cell geo.Cell) []byte {
	prefixBytes := []byte(cityCellPrefix + ":")
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(cell))
	return buf
}

// makeCheckpointKey generates a key for processor checkpoints.
func makeCheckpointKey(processorType string) []byte {
	return []byte(fmt.Sprintf("%s:chkpt", processorType))
}
