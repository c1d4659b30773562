// Package config loads the chaincode process settings from the environment.
//
// Only process concerns live here. Anything that changes ledger behavior must be stored on
// the ledger so that every endorsing peer computes the same result.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/hyperledger/fabric-chaincode-go/shim"
)

// Chaincode holds the settings of the chaincode process.
type Chaincode struct {
	ServerAddress    string `env:"CHAINCODE_SERVER_ADDRESS"`
	ID               string `env:"CHAINCODE_ID"`
	LegacyID         string `env:"CORE_CHAINCODE_ID_NAME"`
	TLSDisabled      bool   `env:"CHAINCODE_TLS_DISABLED" envDefault:"true"`
	TLSKeyFile       string `env:"CHAINCODE_TLS_KEY_FILE"`
	TLSCertFile      string `env:"CHAINCODE_TLS_CERT_FILE"`
	ClientCACertFile string `env:"CHAINCODE_CLIENT_CA_CERT_FILE"`
	LogSpec          string `env:"CHAINCODE_LOG_SPEC" envDefault:"info"`
}

// Load parses the environment and validates the result.
func Load() (Chaincode, error) {
	var cfg Chaincode
	if err := env.Parse(&cfg); err != nil {
		return Chaincode{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Chaincode{}, err
	}
	return cfg, nil
}

// ExternalService reports whether the chaincode runs as a service the peer dials.
func (c Chaincode) ExternalService() bool {
	return strings.TrimSpace(c.ServerAddress) != ""
}

// CCID returns the package id the peer knows the chaincode by.
func (c Chaincode) CCID() string {
	if c.ID != "" {
		return c.ID
	}
	return c.LegacyID
}

// Validate checks that the settings needed by the selected run mode are present.
func (c Chaincode) Validate() error {
	if !c.ExternalService() {
		return nil
	}
	if c.CCID() == "" {
		return errors.New("CHAINCODE_ID is required when CHAINCODE_SERVER_ADDRESS is set")
	}
	if !c.TLSDisabled && (c.TLSKeyFile == "" || c.TLSCertFile == "") {
		return errors.New("CHAINCODE_TLS_KEY_FILE and CHAINCODE_TLS_CERT_FILE are required when TLS is enabled")
	}
	return nil
}

// TLSProperties reads the key material for the chaincode server.
func (c Chaincode) TLSProperties() (shim.TLSProperties, error) {
	props := shim.TLSProperties{Disabled: c.TLSDisabled}
	if c.TLSDisabled {
		return props, nil
	}
	key, err := os.ReadFile(c.TLSKeyFile)
	if err != nil {
		return props, fmt.Errorf("read tls key: %w", err)
	}
	cert, err := os.ReadFile(c.TLSCertFile)
	if err != nil {
		return props, fmt.Errorf("read tls cert: %w", err)
	}
	props.Key = key
	props.Cert = cert
	if c.ClientCACertFile != "" {
		ca, err := os.ReadFile(c.ClientCACertFile)
		if err != nil {
			return props, fmt.Errorf("read client ca cert: %w", err)
		}
		props.ClientCACerts = ca
	}
	return props, nil
}
