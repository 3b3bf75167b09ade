package ubi

import "strings"

// Platform tags accepted by upstream profile search
const (
	PlatformPC   = "uplay"
	PlatformXbox = "xbl"
	PlatformPSN  = "psn"
)

const DefaultBaseURL = "https://public-ubiservices.ubi.com"

const (
	pcSandboxPath   = "/v1/spaces/5172a557-50b5-4665-b7db-e3f2e8c5041d/sandboxes/OSBOR_PC_LNCH_A"
	xboxSandboxPath = "/v1/spaces/98a601e5-ca91-4440-b1c5-753f601a2c90/sandboxes/OSBOR_XBOXONE_LNCH_A"
	psnSandboxPath  = "/v1/spaces/05bfb3f7-6c21-4c42-be1f-97a33fb5cf66/sandboxes/OSBOR_PS4_LNCH_A"
)

// Game data base URLs per platform
type Sandboxes struct {
	PC   string
	Xbox string
	PSN  string
}

// DefaultSandboxes returns well known sandboxes hosted under baseURL
func DefaultSandboxes(baseURL string) Sandboxes {
	baseURL = strings.TrimRight(baseURL, "/")
	return Sandboxes{
		PC:   baseURL + pcSandboxPath,
		Xbox: baseURL + xboxSandboxPath,
		PSN:  baseURL + psnSandboxPath,
	}
}

// Override replaces sandboxes with non empty values from other
func (s Sandboxes) Override(other Sandboxes) Sandboxes {
	if other.PC != "" {
		s.PC = other.PC
	}
	if other.Xbox != "" {
		s.Xbox = other.Xbox
	}
	if other.PSN != "" {
		s.PSN = other.PSN
	}
	return s
}

// URL of the sandbox for the platform. Unknown platforms fall back to PC
func (s Sandboxes) URL(platform string) string {
	switch platform {
	case PlatformXbox:
		return s.Xbox
	case PlatformPSN:
		return s.PSN
	default:
		return s.PC
	}
}
