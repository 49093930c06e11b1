package types

// Version is the canonical client version.
// It is reported to the mailbox in Mex-ClientVersion and by `mesh version`.
const Version = "0.3.0"

// ClientName prefixes Version in the Mex-ClientVersion header.
const ClientName = "mesh-go"

// ClientVersion returns the value sent in the Mex-ClientVersion header.
func ClientVersion() string {
	return ClientName + "/" + Version
}
