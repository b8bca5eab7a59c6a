package bch

// referenceParityColumns are the 16 pre-computed 48-bit parity columns used
// by the reference P25 NID encoder: one 48-bit value per information bit,
// XORed together wherever the corresponding information bit is set to
// produce the 48-bit checksum appended after the 16-bit (NAC||DUID) field.
// This mirrors the constant table printed by the original decoder's
// self-test routine; it is not used by Encode/Decode above (which derive
// parity algebraically from the generator polynomial) but is kept as a
// grounding fixture and exercised by TestReferenceParityColumns_TDULCExample.
var referenceParityColumns = [16]uint64{
	0o6331141367235452,
	0o5265521614723276,
	0o4603711461164164,
	0o2301744630472072,
	0o7271623073000466,
	0o5605650752635660,
	0o2702724365316730,
	0o1341352172547354,
	0o0560565075263566,
	0o6141333751704220,
	0o3060555764742110,
	0o1430266772361044,
	0o0614133375170422,
	0o6037114611641642,
	0o5326507063515373,
	0o4662302756473127,
}

// referenceParity XORs together the columns selected by the set bits of a
// 16-bit information word (bit 15 is column 0), reproducing the reference
// encoder's checksum computation.
func referenceParity(info uint16) uint64 {
	var checksum uint64
	for i := 0; i < 16; i++ {
		if info&(1<<uint(15-i)) != 0 {
			checksum ^= referenceParityColumns[i]
		}
	}
	return checksum
}
