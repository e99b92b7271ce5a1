package gqrfc

import "github.com/cloudchamber-io/geigerctl/internal/protocol"

// RFC1701v1 is the EMF meter revision. EMF model strings vary in length
// between hardware runs, so GETVER becomes idle-bounded text here instead
// of a fixed split.
var RFC1701v1 = RFC1201.MustExtend("GQ-RFC1701/1.00", rfc1701v1Additions(), rfc1701v1Overrides())

// RFC1701v2 adds the spectrum scan surface introduced with later EMF
// firmware.
var RFC1701v2 = RFC1701v1.MustExtend("GQ-RFC1701/2.00", rfc1701v2Additions(), nil)

func rfc1701v1Additions() []protocol.Command {
	return []protocol.Command{
		protocol.MustCommand("KEYHOLD", "press and hold a front panel key",
			protocol.ChoiceRequest("<KEYHOLD",
				protocol.ArgSpec{Name: "key", Kind: protocol.ArgChoice, Choices: keyChoices},
			),
			protocol.FixedBytes{N: 0},
			protocol.DecodeNothing()),
		protocol.MustCommand("GETMODE", "current display mode name",
			protocol.StaticRequest("<GETMODE>>"),
			protocol.UntilIdle{Max: 32},
			protocol.DecodeText()),
		protocol.MustCommand("GETSCREEN", "raw LCD buffer dump",
			protocol.StaticRequest("<GETSCREEN>>"),
			protocol.UntilIdle{Max: 8192},
			protocol.DecodeRaw()),
		protocol.MustCommand("GETEMF", "electromagnetic field reading in mG",
			protocol.StaticRequest("<GETEMF>>"),
			protocol.UntilIdle{Max: 32},
			protocol.DecodeText()),
		protocol.MustCommand("GETEF", "electric field reading in V/m",
			protocol.StaticRequest("<GETEF>>"),
			protocol.UntilIdle{Max: 32},
			protocol.DecodeText()),
		protocol.MustCommand("GETRF", "radio frequency band reading",
			protocol.StaticRequest("<GETRF>>"),
			protocol.UntilIdle{Max: 64},
			protocol.DecodeText()),
		protocol.MustCommand("RESETRFPEAK", "clear the held RF peak value",
			protocol.StaticRequest("<RESETRFPEAK>>"),
			protocol.FixedBytes{N: 1},
			protocol.DecodeAck(ackByte)),
		protocol.MustCommand("GETBANDDATA", "per-band RF spectrum table; observed up to 16 KiB",
			protocol.StaticRequest("<GETBANDDATA>>"),
			protocol.UntilIdle{Max: 16384},
			protocol.DecodeText()),
		protocol.MustCommand("SETSPECTRUMBAND", "select the RF spectrum band",
			protocol.BinaryRequest("<SETSPECTRUMBAND",
				protocol.ArgSpec{Name: "band", Kind: protocol.ArgUint8},
			),
			protocol.FixedBytes{N: 1},
			protocol.DecodeAck(ackByte)),
		protocol.MustCommand("SPIE", "erase the history flash",
			protocol.StaticRequest("<SPIE>>"),
			protocol.FixedBytes{N: 1},
			protocol.DecodeAck(ackByte)),
		protocol.MustCommand("ECHO", "firmware echo check",
			protocol.StaticRequest("<ECHO>>"),
			protocol.UntilIdle{Max: 64},
			protocol.DecodeText()),
	}
}

func rfc1701v1Overrides() []protocol.Command {
	return []protocol.Command{
		protocol.MustCommand("GETVER", "hardware model and firmware revision",
			protocol.StaticRequest("<GETVER>>"),
			protocol.UntilIdle{Max: 64},
			protocol.DecodeText()),
	}
}

func rfc1701v2Additions() []protocol.Command {
	return []protocol.Command{
		protocol.MustCommand("GETXYZ", "EMF reading split per axis",
			protocol.StaticRequest("<GETXYZ>>"),
			protocol.UntilIdle{Max: 64},
			protocol.DecodeText()),
		protocol.MustCommand("RESETBANDDATA", "clear the RF spectrum table",
			protocol.StaticRequest("<RESETBANDDATA>>"),
			protocol.FixedBytes{N: 1},
			protocol.DecodeAck(ackByte)),
		protocol.MustCommand("GETSPECTRUMFULLSCANFLAG", "whether a full spectrum scan finished",
			protocol.StaticRequest("<GETSPECTRUMFULLSCANFLAG>>"),
			protocol.FixedBytes{N: 1},
			protocol.DecodeUintBE(1)),
	}
}
