/*
 * dalvik - a Dalvik-compatible bytecode virtual machine
 * Opcode table: byte value -> (mnemonic, format), grounded directly on
 * the 0x00-0xE2 dispatch table built in
 * original_source/src/interpreter.cpp's constructor. Slots the original
 * never binds (0x3E-0x43, 0x73, 0x79-0x7A, 0xE3-0xFF) are left as the
 * zero OpInfo and rejected at dispatch time.
 */

package interp

var opTable = [256]OpInfo{
	0x00: {"nop", Fmt10x},
	0x01: {"move", Fmt12x},
	0x02: {"move/from16", Fmt22x},
	0x03: {"move/16", Fmt32x},
	0x04: {"move-wide", Fmt12x},
	0x05: {"move-wide/from16", Fmt22x},
	0x06: {"move-wide/16", Fmt32x},
	0x07: {"move-object", Fmt12x},
	0x08: {"move-object/from16", Fmt22x},
	0x09: {"move-object/16", Fmt32x},
	0x0A: {"move-result", Fmt11x},
	0x0B: {"move-result-wide", Fmt11x},
	0x0C: {"move-result-object", Fmt11x},
	0x0D: {"move-exception", Fmt11x},
	0x0E: {"return-void", Fmt10x},
	0x0F: {"return", Fmt11x},
	0x10: {"return-wide", Fmt11x},
	0x11: {"return-object", Fmt11x},
	0x12: {"const/4", Fmt11n},
	0x13: {"const/16", Fmt21s},
	0x14: {"const", Fmt31i},
	0x15: {"const/high16", Fmt21h},
	0x16: {"const-wide/16", Fmt21s},
	0x17: {"const-wide/32", Fmt31i},
	0x18: {"const-wide", Fmt51l},
	0x19: {"const-wide/high16", Fmt21h},
	0x1A: {"const-string", Fmt21c},
	0x1B: {"const-string/jumbo", Fmt31c},
	0x1C: {"const-class", Fmt21c},
	0x1D: {"monitor-enter", Fmt11x},
	0x1E: {"monitor-exit", Fmt11x},
	0x1F: {"check-cast", Fmt21c},
	0x20: {"instance-of", Fmt22c},
	0x21: {"array-length", Fmt12x},
	0x22: {"new-instance", Fmt21c},
	0x23: {"new-array", Fmt22c},
	0x24: {"filled-new-array", Fmt35c},
	0x25: {"filled-new-array/range", Fmt3rc},
	0x26: {"fill-array-data", Fmt31t},
	0x27: {"throw", Fmt11x},
	0x28: {"goto", Fmt10t},
	0x29: {"goto/16", Fmt20t},
	0x2A: {"goto/32", Fmt30t},
	0x2B: {"packed-switch", Fmt31t},
	0x2C: {"sparse-switch", Fmt31t},
	0x2D: {"cmpl-float", Fmt23x},
	0x2E: {"cmpg-float", Fmt23x},
	0x2F: {"cmpl-double", Fmt23x},
	0x30: {"cmpg-double", Fmt23x},
	0x31: {"cmp-long", Fmt23x},
	0x32: {"if-eq", Fmt22t},
	0x33: {"if-ne", Fmt22t},
	0x34: {"if-lt", Fmt22t},
	0x35: {"if-ge", Fmt22t},
	0x36: {"if-gt", Fmt22t},
	0x37: {"if-le", Fmt22t},
	0x38: {"if-eqz", Fmt21t},
	0x39: {"if-nez", Fmt21t},
	0x3A: {"if-ltz", Fmt21t},
	0x3B: {"if-gez", Fmt21t},
	0x3C: {"if-gtz", Fmt21t},
	0x3D: {"if-lez", Fmt21t},
	// 0x3E-0x43 unused

	0x44: {"aget", Fmt23x},
	0x45: {"aget-wide", Fmt23x},
	0x46: {"aget-object", Fmt23x},
	0x47: {"aget-boolean", Fmt23x},
	0x48: {"aget-byte", Fmt23x},
	0x49: {"aget-char", Fmt23x},
	0x4A: {"aget-short", Fmt23x},
	0x4B: {"aput", Fmt23x},
	0x4C: {"aput-wide", Fmt23x},
	0x4D: {"aput-object", Fmt23x},
	0x4E: {"aput-boolean", Fmt23x},
	0x4F: {"aput-byte", Fmt23x},
	0x50: {"aput-char", Fmt23x},
	0x51: {"aput-short", Fmt23x},
	0x52: {"iget", Fmt22c},
	0x53: {"iget-wide", Fmt22c},
	0x54: {"iget-object", Fmt22c},
	0x55: {"iget-boolean", Fmt22c},
	0x56: {"iget-byte", Fmt22c},
	0x57: {"iget-char", Fmt22c},
	0x58: {"iget-short", Fmt22c},
	0x59: {"iput", Fmt22c},
	0x5A: {"iput-wide", Fmt22c},
	0x5B: {"iput-object", Fmt22c},
	0x5C: {"iput-boolean", Fmt22c},
	0x5D: {"iput-byte", Fmt22c},
	0x5E: {"iput-char", Fmt22c},
	0x5F: {"iput-short", Fmt22c},
	0x60: {"sget", Fmt21c},
	0x61: {"sget-wide", Fmt21c},
	0x62: {"sget-object", Fmt21c},
	0x63: {"sget-boolean", Fmt21c},
	0x64: {"sget-byte", Fmt21c},
	0x65: {"sget-char", Fmt21c},
	0x66: {"sget-short", Fmt21c},
	0x67: {"sput", Fmt21c},
	0x68: {"sput-wide", Fmt21c},
	0x69: {"sput-object", Fmt21c},
	0x6A: {"sput-boolean", Fmt21c},
	0x6B: {"sput-byte", Fmt21c},
	0x6C: {"sput-char", Fmt21c},
	0x6D: {"sput-short", Fmt21c},
	0x6E: {"invoke-virtual", Fmt35c},
	0x6F: {"invoke-super", Fmt35c},
	0x70: {"invoke-direct", Fmt35c},
	0x71: {"invoke-static", Fmt35c},
	0x72: {"invoke-interface", Fmt35c},
	// 0x73 unused
	0x74: {"invoke-virtual/range", Fmt3rc},
	0x75: {"invoke-super/range", Fmt3rc},
	0x76: {"invoke-direct/range", Fmt3rc},
	0x77: {"invoke-static/range", Fmt3rc},
	0x78: {"invoke-interface/range", Fmt3rc},
	// 0x79-0x7A unused

	0x7B: {"neg-int", Fmt12x},
	0x7C: {"not-int", Fmt12x},
	0x7D: {"neg-long", Fmt12x},
	0x7E: {"not-long", Fmt12x},
	0x7F: {"neg-float", Fmt12x},
	0x80: {"neg-double", Fmt12x},
	0x81: {"int-to-long", Fmt12x},
	0x82: {"int-to-float", Fmt12x},
	0x83: {"int-to-double", Fmt12x},
	0x84: {"long-to-int", Fmt12x},
	0x85: {"long-to-float", Fmt12x},
	0x86: {"long-to-double", Fmt12x},
	0x87: {"float-to-int", Fmt12x},
	0x88: {"float-to-long", Fmt12x},
	0x89: {"float-to-double", Fmt12x},
	0x8A: {"double-to-int", Fmt12x},
	0x8B: {"double-to-long", Fmt12x},
	0x8C: {"double-to-float", Fmt12x},
	0x8D: {"int-to-byte", Fmt12x},
	0x8E: {"int-to-char", Fmt12x},
	0x8F: {"int-to-short", Fmt12x},

	0x90: {"add-int", Fmt23x},
	0x91: {"sub-int", Fmt23x},
	0x92: {"mul-int", Fmt23x},
	0x93: {"div-int", Fmt23x},
	0x94: {"rem-int", Fmt23x},
	0x95: {"and-int", Fmt23x},
	0x96: {"or-int", Fmt23x},
	0x97: {"xor-int", Fmt23x},
	0x98: {"shl-int", Fmt23x},
	0x99: {"shr-int", Fmt23x},
	0x9A: {"ushr-int", Fmt23x},
	0x9B: {"add-long", Fmt23x},
	0x9C: {"sub-long", Fmt23x},
	0x9D: {"mul-long", Fmt23x},
	0x9E: {"div-long", Fmt23x},
	0x9F: {"rem-long", Fmt23x},
	0xA0: {"and-long", Fmt23x},
	0xA1: {"or-long", Fmt23x},
	0xA2: {"xor-long", Fmt23x},
	0xA3: {"shl-long", Fmt23x},
	0xA4: {"shr-long", Fmt23x},
	0xA5: {"ushr-long", Fmt23x},
	0xA6: {"add-float", Fmt23x},
	0xA7: {"sub-float", Fmt23x},
	0xA8: {"mul-float", Fmt23x},
	0xA9: {"div-float", Fmt23x},
	0xAA: {"rem-float", Fmt23x},
	0xAB: {"add-double", Fmt23x},
	0xAC: {"sub-double", Fmt23x},
	0xAD: {"mul-double", Fmt23x},
	0xAE: {"div-double", Fmt23x},
	0xAF: {"rem-double", Fmt23x},

	0xB0: {"add-int/2addr", Fmt12x},
	0xB1: {"sub-int/2addr", Fmt12x},
	0xB2: {"mul-int/2addr", Fmt12x},
	0xB3: {"div-int/2addr", Fmt12x},
	0xB4: {"rem-int/2addr", Fmt12x},
	0xB5: {"and-int/2addr", Fmt12x},
	0xB6: {"or-int/2addr", Fmt12x},
	0xB7: {"xor-int/2addr", Fmt12x},
	0xB8: {"shl-int/2addr", Fmt12x},
	0xB9: {"shr-int/2addr", Fmt12x},
	0xBA: {"ushr-int/2addr", Fmt12x},
	0xBB: {"add-long/2addr", Fmt12x},
	0xBC: {"sub-long/2addr", Fmt12x},
	0xBD: {"mul-long/2addr", Fmt12x},
	0xBE: {"div-long/2addr", Fmt12x},
	0xBF: {"rem-long/2addr", Fmt12x},
	0xC0: {"and-long/2addr", Fmt12x},
	0xC1: {"or-long/2addr", Fmt12x},
	0xC2: {"xor-long/2addr", Fmt12x},
	0xC3: {"shl-long/2addr", Fmt12x},
	0xC4: {"shr-long/2addr", Fmt12x},
	0xC5: {"ushr-long/2addr", Fmt12x},
	0xC6: {"add-float/2addr", Fmt12x},
	0xC7: {"sub-float/2addr", Fmt12x},
	0xC8: {"mul-float/2addr", Fmt12x},
	0xC9: {"div-float/2addr", Fmt12x},
	0xCA: {"rem-float/2addr", Fmt12x},
	0xCB: {"add-double/2addr", Fmt12x},
	0xCC: {"sub-double/2addr", Fmt12x},
	0xCD: {"mul-double/2addr", Fmt12x},
	0xCE: {"div-double/2addr", Fmt12x},
	0xCF: {"rem-double/2addr", Fmt12x},

	0xD0: {"add-int/lit16", Fmt22s},
	0xD1: {"rsub-int/lit16", Fmt22s},
	0xD2: {"mul-int/lit16", Fmt22s},
	0xD3: {"div-int/lit16", Fmt22s},
	0xD4: {"rem-int/lit16", Fmt22s},
	0xD5: {"and-int/lit16", Fmt22s},
	0xD6: {"or-int/lit16", Fmt22s},
	0xD7: {"xor-int/lit16", Fmt22s},
	0xD8: {"add-int/lit8", Fmt22b},
	0xD9: {"rsub-int/lit8", Fmt22b},
	0xDA: {"mul-int/lit8", Fmt22b},
	0xDB: {"div-int/lit8", Fmt22b},
	0xDC: {"rem-int/lit8", Fmt22b},
	0xDD: {"and-int/lit8", Fmt22b},
	0xDE: {"or-int/lit8", Fmt22b},
	0xDF: {"xor-int/lit8", Fmt22b},
	0xE0: {"shl-int/lit8", Fmt22b},
	0xE1: {"shr-int/lit8", Fmt22b},
	0xE2: {"ushr-int/lit8", Fmt22b},
	// 0xE3-0xFF unused
}

func lookupOp(b byte) (OpInfo, bool) {
	op := opTable[b]
	if op.Name == "" {
		return OpInfo{}, false
	}
	return op, true
}
