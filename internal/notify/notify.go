// Package notify 将已保存的换款记录推送到 Kafka。
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"linechange/internal/changeover"
	"linechange/internal/metrics"
	"linechange/internal/model"
)

// EventChangeoverSaved 换款记录保存事件
const EventChangeoverSaved = "changeover.saved"

// Event 换款事件消息体
type Event struct {
	Type          string                    `json:"type"`
	ID            string                    `json:"id"`
	QCONumber     string                    `json:"qcoNumber"`
	LineNumber    string                    `json:"lineNumber"`
	CurrentStyle  string                    `json:"currentStyle"`
	UpcomingStyle string                    `json:"upcomingStyle"`
	TotalNeeded   int                       `json:"totalNeeded"`
	TotalSurplus  int                       `json:"totalSurplus"`
	Changes       []model.MachineComparison `json:"changes"`
	Timestamp     time.Time                 `json:"timestamp"`
}

// messageWriter kafka.Writer 的最小接口
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher 换款事件发布者
type Publisher struct {
	w   messageWriter
	log *zap.Logger
}

// NewKafkaPublisher 创建 Kafka 发布者
func NewKafkaPublisher(brokers []string, topic string, log *zap.Logger) *Publisher {
	return newPublisher(newKafkaWriter(brokers, topic), log)
}

// newKafkaWriter 按消息 Key（产线）哈希分区，同一产线的事件保持顺序
func newKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

func newPublisher(w messageWriter, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{w: w, log: log}
}

// BuildEvent 由换款记录构建事件；只保留有差异的机器
func BuildEvent(id string, data *model.QCOData) Event {
	ev := Event{
		Type:         EventChangeoverSaved,
		ID:           id,
		QCONumber:    data.QCONumber,
		LineNumber:   data.LineNumber,
		TotalNeeded:  data.TotalNeeded,
		TotalSurplus: data.TotalSurplus,
		Changes:      []model.MachineComparison{},
		Timestamp:    data.Timestamp,
	}
	if data.CurrentStyle != nil {
		ev.CurrentStyle = data.CurrentStyle.StyleNumber
	}
	if data.UpcomingStyle != nil {
		ev.UpcomingStyle = data.UpcomingStyle.StyleNumber
	}
	for _, c := range changeover.SortByPriority(data.MachineSummary) {
		if c.Status != model.MachineOK {
			ev.Changes = append(ev.Changes, c)
		}
	}
	return ev
}

// BuildMessage 构建 Kafka 消息，按产线分区
func BuildMessage(id string, data *model.QCOData) (kafka.Message, error) {
	b, err := json.Marshal(BuildEvent(id, data))
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode changeover event: %w", err)
	}
	return kafka.Message{Key: []byte(data.LineNumber), Value: b, Time: time.Now()}, nil
}

// Publish 发布换款事件
func (p *Publisher) Publish(ctx context.Context, id string, data *model.QCOData) error {
	msg, err := BuildMessage(id, data)
	if err != nil {
		return err
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("changeover write: %w", err)
	}
	p.log.Info("changeover_published", zap.String("id", id), zap.String("line", data.LineNumber))
	return nil
}

// Close 关闭底层连接
func (p *Publisher) Close() error {
	return p.w.Close()
}

// Saver 保存后推送事件的 changeover.Saver；推送失败只记录日志，不影响保存结果
type Saver struct {
	next    changeover.Saver
	pub     *Publisher
	metrics *metrics.Metrics
	log     *zap.Logger
}

// NewSaver 包装持久化实现
func NewSaver(next changeover.Saver, pub *Publisher, m *metrics.Metrics, log *zap.Logger) *Saver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Saver{next: next, pub: pub, metrics: m, log: log}
}

// Save 实现 changeover.Saver
func (s *Saver) Save(ctx context.Context, id string, data *model.QCOData) (model.SaveResult, error) {
	res, err := s.next.Save(ctx, id, data)
	if err != nil || !res.Success || s.pub == nil {
		return res, err
	}
	if perr := s.pub.Publish(ctx, res.ID, data); perr != nil {
		s.metrics.NotifyFailed()
		s.log.Warn("changeover_publish_failed", zap.String("id", res.ID), zap.Error(perr))
	}
	return res, nil
}
