package notify

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"

	"repokit/logging"
)

// headerCarrier 让 nats.Msg 头部满足 propagation.TextMapCarrier
type headerCarrier nats.Msg

func (c *headerCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *headerCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

// NATSConfig NATS 发布配置
type NATSConfig struct {
	URL  string
	Conn *nats.Conn

	// Subject 主题前缀，事件发布到 <Subject>.<EventType>，默认 "repokit"
	Subject string
	Logger  logging.Logger
}

// NATSPublisher 以 JSON 发布变更事件，并在消息头中注入追踪上下文
type NATSPublisher struct {
	conn     *nats.Conn
	ownsConn bool
	subject  string
	logger   logging.Logger
}

// NewNATSPublisher 创建发布者；未提供 Conn 时按 URL 建立连接
func NewNATSPublisher(cfg NATSConfig) (*NATSPublisher, error) {
	if cfg.Subject == "" {
		cfg.Subject = "repokit"
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.ComponentLogger("notify.nats")
	}

	conn, owns := cfg.Conn, false
	if conn == nil {
		if cfg.URL == "" {
			return nil, errors.New("notify: nats url or connection is required")
		}
		var err error
		conn, err = nats.Connect(cfg.URL, nats.Name("repokit"))
		if err != nil {
			return nil, err
		}
		owns = true
	}
	return &NATSPublisher{conn: conn, ownsConn: owns, subject: cfg.Subject, logger: cfg.Logger}, nil
}

// SubjectFor 事件类型对应的主题
func (p *NATSPublisher) SubjectFor(t EventType) string {
	return p.subject + "." + string(t)
}

func (p *NATSPublisher) Publish(ctx context.Context, event ChangeEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := &nats.Msg{Subject: p.SubjectFor(event.Type), Data: data}
	otel.GetTextMapPropagator().Inject(ctx, (*headerCarrier)(msg))

	p.logger.Debug(ctx, "publish change event",
		logging.String("subject", msg.Subject),
		logging.String("entity_id", event.EntityID),
	)
	return p.conn.PublishMsg(msg)
}

// Close 刷新缓冲并关闭自行建立的连接
func (p *NATSPublisher) Close() error {
	if !p.ownsConn {
		return nil
	}
	err := p.conn.Flush()
	p.conn.Close()
	return err
}

// Subscribe 订阅 <subject>.> 下的全部变更事件，追踪上下文从消息头恢复
//
// 无法解码的消息会被丢弃并记录警告。
func Subscribe(nc *nats.Conn, subject string, handler func(ctx context.Context, event ChangeEvent)) (*nats.Subscription, error) {
	logger := logging.ComponentLogger("notify.nats")
	return nc.Subscribe(subject+".>", func(msg *nats.Msg) {
		ctx := otel.GetTextMapPropagator().Extract(context.Background(), (*headerCarrier)(msg))

		var event ChangeEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			logger.Warn(ctx, "drop malformed change event",
				logging.String("subject", msg.Subject),
				logging.Error(err),
			)
			return
		}
		handler(ctx, event)
	})
}
