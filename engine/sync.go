package engine

import (
	"encoding/binary"
	"fmt"

	"github.com/slackvfs/svfs/bootstrap"
	"github.com/slackvfs/svfs/codec"
	"github.com/slackvfs/svfs/config"
	"github.com/slackvfs/svfs/cryptoutil"
	"github.com/slackvfs/svfs/slack"
	"github.com/slackvfs/svfs/superblock"
	"github.com/slackvfs/svfs/vfserrors"
)

// maxReplicas bounds the number of identical superblock copies placed
// per sync, per spec's min(3, hosts-with-enough-slack) replication rule.
const maxReplicas = 3

// replicaStride separates one replica's symbol ids from the next inside
// the bootstrap artifact's single flat SuperblockSymbols list: the
// artifact schema does not group locations by replica explicitly, so
// the high digits of each symbol id double as a replica tag.
const replicaStride = 1 << 20

func replicaSymbolID(replica, local int) uint32 {
	return uint32(replica)*replicaStride + uint32(local)
}

func splitReplicaSymbolID(id uint32) (replica, local int) {
	return int(id / replicaStride), int(id % replicaStride)
}

// Sync persists the in-memory superblock if it has changed since the
// last sync. It is idempotent: a call with no intervening mutation is a
// no-op, per the ordering guarantees each mutating operation relies on.
func (e *Engine) Sync() error {
	if !e.dirty {
		return nil
	}

	// Strategy A: reset per-host used-slack to the hidden-file-only
	// high-water mark before placing this sync's superblock replicas,
	// so a previous sync's replica bytes are implicitly freed.
	for _, h := range e.hm.Hosts() {
		used := uint64(0)
		if usage, ok := e.sb.HostUsageMap()[h.Path]; ok {
			used = usage.UsedSlack
		}
		e.hm.ApplyUsedSlack(h.Path, used)
	}

	e.sb.SequenceNumber++
	plaintext := e.sb.ToBytes()

	ciphertext, err := cryptoutil.EncryptWithKey(plaintext, e.sessionKey)
	if err != nil {
		return err
	}
	framed := frameLengthDelimited(ciphertext)

	encoded, err := codec.Encode(framed, e.sb.EncodingConfig())
	if err != nil {
		return err
	}

	replicaCount := maxReplicas
	if len(e.hm.Hosts()) < replicaCount {
		replicaCount = len(e.hm.Hosts())
	}
	if replicaCount == 0 {
		return vfserrors.ErrNoHostFiles
	}

	var locations []bootstrap.SymbolLocation
	for r := 0; r < replicaCount; r++ {
		if len(encoded.Symbols) == 0 {
			break
		}
		locs, err := e.hm.Allocate(len(encoded.Symbols), encoded.SymbolSize, 0)
		if err != nil {
			return err
		}
		for i, loc := range locs {
			host, ok := e.hm.HostByPath(loc.HostPath)
			if !ok {
				return fmt.Errorf("%w: allocation referenced unknown host %s", vfserrors.ErrDataCorruption, loc.HostPath)
			}
			absOffset := host.LogicalSize + loc.Offset
			if err := slack.Write(loc.HostPath, encoded.Symbols[i].Payload, absOffset); err != nil {
				return err
			}
			locations = append(locations, bootstrap.SymbolLocation{
				HostPath: loc.HostPath,
				Offset:   absOffset,
				Length:   loc.Length,
				SymbolID: replicaSymbolID(r, i),
			})
		}
	}

	art := &bootstrap.Artifact{
		Version:   config.VFSVersion,
		BlockSize: e.sb.Config.BlockSize,
		Salt:      e.sb.Salt,
		SuperblockEncoding: bootstrap.SuperblockEncoding{
			OriginalLength: encoded.OriginalLength,
			SourceSymbols:  encoded.K,
			RepairSymbols:  encoded.R,
			SymbolSize:     encoded.SymbolSize,
		},
		SuperblockSymbols: locations,
	}
	if err := bootstrap.Write(e.hostDir, art); err != nil {
		return err
	}

	e.dirty = false
	return nil
}

// recoverSuperblock reads every superblock replica named by the
// bootstrap artifact, decodes and decrypts each that is readable, and
// returns the one with the highest sequence number. It also returns,
// per host, the total byte length of the winning replica's own symbols
// so the caller can fold that into post-mount used-slack accounting.
// When no replica survives, it fails with ErrDecryption if at least one
// replica decoded but did not decrypt under key, else ErrDataCorruption.
func recoverSuperblock(art *bootstrap.Artifact, key []byte) (*superblock.Superblock, map[string]uint64, error) {
	byReplica := make(map[int][]bootstrap.SymbolLocation)
	for _, loc := range art.SuperblockSymbols {
		r, _ := splitReplicaSymbolID(loc.SymbolID)
		byReplica[r] = append(byReplica[r], loc)
	}
	if len(byReplica) == 0 {
		return nil, nil, vfserrors.ErrDataCorruption
	}

	var winner *superblock.Superblock
	var winnerLengths map[string]uint64
	decryptFailed := false

	for _, locs := range byReplica {
		symbols := make([]codec.Symbol, 0, len(locs))
		for _, loc := range locs {
			_, local := splitReplicaSymbolID(loc.SymbolID)
			data, err := slack.Read(loc.HostPath, loc.Offset, int(loc.Length))
			if err != nil || uint32(len(data)) != loc.Length {
				continue
			}
			symbols = append(symbols, codec.Symbol{ID: uint32(local), Payload: data})
		}

		encoded := codec.EncodedData{
			OriginalLength: art.SuperblockEncoding.OriginalLength,
			K:              art.SuperblockEncoding.SourceSymbols,
			R:              art.SuperblockEncoding.RepairSymbols,
			SymbolSize:     art.SuperblockEncoding.SymbolSize,
			Symbols:        symbols,
		}
		framed, err := codec.Decode(encoded)
		if err != nil {
			continue
		}
		ciphertext, err := unframeLengthDelimited(framed)
		if err != nil {
			continue
		}
		plaintext, err := cryptoutil.DecryptWithKey(ciphertext, key)
		if err != nil {
			decryptFailed = true
			continue
		}
		sb, err := superblock.FromBytes(plaintext)
		if err != nil {
			continue
		}

		if winner == nil || sb.SequenceNumber > winner.SequenceNumber {
			winner = sb
			lengths := make(map[string]uint64)
			for _, loc := range locs {
				lengths[loc.HostPath] += uint64(loc.Length)
			}
			winnerLengths = lengths
		}
	}

	if winner == nil {
		if decryptFailed {
			return nil, nil, vfserrors.ErrDecryption
		}
		return nil, nil, vfserrors.ErrDataCorruption
	}
	return winner, winnerLengths, nil
}

func frameLengthDelimited(blob []byte) []byte {
	out := make([]byte, 4+len(blob))
	binary.LittleEndian.PutUint32(out, uint32(len(blob)))
	copy(out[4:], blob)
	return out
}

func unframeLengthDelimited(framed []byte) ([]byte, error) {
	if len(framed) < 4 {
		return nil, vfserrors.ErrSerialization
	}
	n := binary.LittleEndian.Uint32(framed)
	if uint64(len(framed)) < 4+uint64(n) {
		return nil, vfserrors.ErrSerialization
	}
	return framed[4 : 4+n], nil
}
