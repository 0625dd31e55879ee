package setup

const (
	EnvPinataJwt      = "PINATA_JWT"
	EnvPinataApiUrl   = "PINATA_API_URL"
	EnvPinataUploader = "PINATA_UPLOADER"
	EnvIpfsGatewayUrl = "IPFS_GATEWAY_URL"
	EnvApiIpPort      = "API_IP_PORT"
	EnvUploadWorkers  = "UPLOAD_WORKERS"
)
