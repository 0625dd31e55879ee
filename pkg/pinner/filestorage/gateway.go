package filestorage

const DefaultGatewayUrl = "https://gateway.pinata.cloud/ipfs/"

// IpfsUrl returns the public gateway URL for a CID. The CID is not
// validated.
func IpfsUrl(cid string) string {
	return DefaultGatewayUrl + cid
}
