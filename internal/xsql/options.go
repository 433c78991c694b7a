package xsql

import (
	"github.com/sqlkit/sqlcore/config"
)

type (
	Option interface {
		Apply(c *Connector) error
	}
	propertiesOption map[string]string
	configOption     []config.Option
	onCloseOption    func(*Connector)
)

func (props propertiesOption) Apply(c *Connector) error {
	for k, v := range props {
		c.props[k] = v
	}

	return nil
}

func (opts configOption) Apply(c *Connector) error {
	c.options = append(c.options, opts...)

	return nil
}

func (onClose onCloseOption) Apply(c *Connector) error {
	c.onClose = append(c.onClose, onClose)

	return nil
}

// WithProperties sets the session properties sent when a connection opens.
func WithProperties(props map[string]string) Option {
	return propertiesOption(props)
}

func WithConfig(opts ...config.Option) Option {
	return configOption(opts)
}

func WithOnClose(f func(*Connector)) Option {
	return onCloseOption(f)
}
