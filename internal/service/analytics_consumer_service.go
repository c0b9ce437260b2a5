package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-organizer-be/internal/dto"
	"ai-organizer-be/internal/entity"
	"ai-organizer-be/internal/pkg/logger"
	"ai-organizer-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IAnalyticsConsumerService interface {
	Consume(ctx context.Context) error
}

// analyticsConsumerService drains the step-event topic and persists each
// event as a job_events row, which the analytics step and the results
// endpoint later aggregate.
type analyticsConsumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewAnalyticsConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) IAnalyticsConsumerService {
	return &analyticsConsumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (s *analyticsConsumerService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *analyticsConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.StepEventMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.logger.Error("analytics", "failed to unmarshal step event", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // malformed messages are not retriable
		return
	}

	event := &entity.JobEvent{
		Id:        uuid.New(),
		JobId:     payload.JobId,
		StepName:  payload.StepName,
		EventType: payload.EventType,
		Payload:   payload.Payload,
		CreatedAt: time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.JobEventRepository().Create(ctx, event); err != nil {
		s.logger.Error("analytics", "failed to persist job event", map[string]interface{}{
			"job_id": payload.JobId.String(),
			"error":  err.Error(),
		})
		msg.Nack()
		return
	}

	msg.Ack()
}
