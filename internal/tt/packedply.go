package tt

import "github.com/cdbfoster/takkerus-sub000/internal/tak"

// packedPly bit-packs a ply into two bytes for storage inside an
// entry's 64-bit data word. Representation:
//
//	Place:
//	              Magic  |   Type | X coord | Y coord
//	          |-----+-------|   |-| |--+| |---|
//	    MSB - 1 1 0 0 0 0 0 0 , t t x x x y y y - LSB
//
//	Spread:
//	  Direction | X coord | Y coord | Drop pattern
//	          |-| |--+| |---|   |------------+--|
//	    MSB - d d x x x y y y , d d d d d d d d - LSB
//
// The two forms are distinguishable because the magic byte can't be
// produced by a valid spread: it would mean spreading West from
// (0, 0), which always runs off the board. A crushing spread is not
// distinguished here; ValidatePly recomputes and normalizes the crush
// flag from the board itself when the unpacked ply is replayed.
type packedPly [2]byte

const placeMagic byte = 0b11000000

func packPly(p tak.Ply) packedPly {
	if !p.IsSpread {
		return packedPly{placeMagic, byte(p.PieceType)<<6 | byte(p.X)<<3 | byte(p.Y)}
	}
	return packedPly{byte(p.Direction)<<6 | byte(p.X)<<3 | byte(p.Y), p.Drops.Byte()}
}

func unpackPly(n int, pp packedPly) (tak.Ply, error) {
	var ply tak.Ply

	if pp[0] == placeMagic {
		ply = tak.PlacePly(int(pp[1]>>3)&0x07, int(pp[1])&0x07, tak.PieceType(pp[1]>>6))
	} else {
		drops, err := tak.NewDrops(n, pp[1])
		if err != nil {
			return tak.Ply{}, err
		}
		ply = tak.SpreadPly(int(pp[0]>>3)&0x07, int(pp[0])&0x07, tak.Direction(pp[0]>>6), drops, false)
	}

	if err := ply.Validate(n); err != nil {
		return tak.Ply{}, err
	}
	return ply, nil
}

func (pp packedPly) toUint16() uint16 { return uint16(pp[0])<<8 | uint16(pp[1]) }

func packedPlyFromUint16(v uint16) packedPly { return packedPly{byte(v >> 8), byte(v)} }
