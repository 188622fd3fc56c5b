package cli

import (
	"net"
	"strconv"
	"time"

	"github.com/certchain/certchain/pkg/certchain/content"
	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/certchain/certchain/pkg/util"
)

type ListenConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

func (c ListenConfig) Address() string {
	if c.Port == 0 {
		return ""
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

type Config struct {
	Database util.PostgresDatabaseConfig `yaml:"database"`
	Server   ListenConfig                `yaml:"server"` // Private listener, API key protected.
	Public   ListenConfig                `yaml:"public"` // Public verification listener.
	Ledger   struct {
		Collection    string        `yaml:"collection"`     // Token id of the certificate collection.
		TopicID       string        `yaml:"topic_id"`       // Consensus topic attestations are published to.
		ContractID    string        `yaml:"contract_id"`    // Registry contract minting through the wallet.
		Gas           uint64        `yaml:"gas"`            // Gas limit per minted certificate.
		SigningKey    string        `yaml:"signing_key"`    // PEM private key signing consensus messages.
		MirrorURL     string        `yaml:"mirror_url"`     // Read records from another node instead of the local registry.
		MirrorTimeout time.Duration `yaml:"mirror_timeout"`
	} `yaml:"ledger"`
	Content content.GatewayConfig `yaml:"content"`
	Wallet  struct {
		SessionDir     string                      `yaml:"session_dir"`
		Providers      map[model.WalletKind]string `yaml:"providers"` // Bridge endpoint per injected wallet kind.
		RelayURL       string                      `yaml:"relay_url"` // Enables the walletconnect wallet.
		AppName        string                      `yaml:"app_name"`
		ConnectTimeout time.Duration               `yaml:"connect_timeout"`
	} `yaml:"wallet"`
	Relay struct {
		Address       string        `yaml:"address"`        // Listen address of the relay command.
		Server        string        `yaml:"server"`         // Relay the outbox publisher sends to.
		CheckInterval time.Duration `yaml:"check_interval"`
		BatchSize     int           `yaml:"batch_size"`
		TLSCert       string        `yaml:"tls_cert"` // Both set: the relay command serves wss://.
		TLSKey        string        `yaml:"tls_key"`
	} `yaml:"relay"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

func (c *Config) SetDefaults() {
	c.Server = ListenConfig{Host: "localhost", Port: 8081}
	c.Public = ListenConfig{Host: "0.0.0.0", Port: 8080}
	c.Ledger.Collection = "0.0.1001"
	c.Ledger.TopicID = "0.0.1002"
	c.Ledger.Gas = 300000
	c.Ledger.MirrorTimeout = 10 * time.Second
	c.Wallet.AppName = "certchain"
	c.Relay.Address = "localhost:9000"
	c.Relay.CheckInterval = 5 * time.Second
	c.Relay.BatchSize = 20
}
