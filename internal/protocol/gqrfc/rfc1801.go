package gqrfc

import "github.com/cloudchamber-io/geigerctl/internal/protocol"

// RFC1801 is the large-counter revision (GMC-5xx and GMC-6xx). Counters
// widen to 32 bits, the configuration block grows to 512 bytes with
// 16-bit addressing, and GETVER answers a 16 byte variable string split
// as model [0:9] and revision [9:16].
var RFC1801 = RFC1201.MustExtend("GQ-RFC1801/1.00", rfc1801Additions(), rfc1801Overrides())

func rfc1801Additions() []protocol.Command {
	return []protocol.Command{
		protocol.MustCommand("GETCPS", "current counts per second",
			protocol.StaticRequest("<GETCPS>>"),
			protocol.FixedBytes{N: 4},
			protocol.DecodeUintBE(4)),
		protocol.MustCommand("GETMAXCPS", "highest counts per second since power-on",
			protocol.StaticRequest("<GETMAXCPS>>"),
			protocol.FixedBytes{N: 4},
			protocol.DecodeUintBE(4)),
		protocol.MustCommand("GETCPML", "counts per minute from the low-dose tube",
			protocol.StaticRequest("<GETCPML>>"),
			protocol.FixedBytes{N: 4},
			protocol.DecodeUintBE(4)),
		protocol.MustCommand("GETCPMH", "counts per minute from the high-dose tube",
			protocol.StaticRequest("<GETCPMH>>"),
			protocol.FixedBytes{N: 4},
			protocol.DecodeUintBE(4)),
	}
}

func rfc1801Overrides() []protocol.Command {
	return []protocol.Command{
		protocol.MustCommand("GETVER", "hardware model and firmware revision",
			protocol.StaticRequest("<GETVER>>"),
			protocol.UntilIdle{Max: 64},
			protocol.DecodeTextFields(
				protocol.TextField{Name: "model", Start: 0, End: 9},
				protocol.TextField{Name: "revision", Start: 9, End: 16},
			)),
		protocol.MustCommand("GETCPM", "current counts per minute",
			protocol.StaticRequest("<GETCPM>>"),
			protocol.FixedBytes{N: 4},
			protocol.DecodeUintBE(4)),
		protocol.MustCommand("GETVOLT", "battery voltage as reported text",
			protocol.StaticRequest("<GETVOLT>>"),
			protocol.UntilIdle{Max: 16},
			protocol.DecodeText()),
		protocol.MustCommand("GETCFG", "raw configuration block",
			protocol.StaticRequest("<GETCFG>>"),
			protocol.FixedBytes{N: 512},
			protocol.DecodeRaw()),
		protocol.MustCommand("WCFG", "write one configuration byte",
			protocol.BinaryRequest("<WCFG",
				protocol.ArgSpec{Name: "address", Kind: protocol.ArgUint16, Max: 511},
				protocol.ArgSpec{Name: "value", Kind: protocol.ArgUint8},
			),
			protocol.FixedBytes{N: 1},
			protocol.DecodeAck(ackByte)),
	}
}
