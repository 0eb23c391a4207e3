package realtime

import (
	"context"

	"quantumshop/internal/domain"
)

// Emitter entrega un mensaje ya armado a su destino.
type Emitter interface {
	Emit(ctx context.Context, msg Message) error
}

// HubEmitter entrega directo a los clientes de esta instancia.
type HubEmitter struct{ Hub *Hub }

func (e HubEmitter) Emit(_ context.Context, msg Message) error {
	e.Hub.Broadcast(msg)
	return nil
}

// BusEmitter publica en el bus; cada instancia reenvia a su hub via StartForwarder.
type BusEmitter struct{ Bus Bus }

func (e BusEmitter) Emit(ctx context.Context, msg Message) error {
	return e.Bus.Publish(ctx, msg)
}

// AnalysisNotifier traduce los eventos del pipeline a mensajes del canal analysis-<id>.
type AnalysisNotifier struct {
	emitter Emitter
}

func NewAnalysisNotifier(emitter Emitter) *AnalysisNotifier {
	return &AnalysisNotifier{emitter: emitter}
}

func (n *AnalysisNotifier) AnalysisStarted(ctx context.Context, subscriberID string, event domain.AnalysisStartedEvent) error {
	return n.emitter.Emit(ctx, Message{
		Channel: domain.AnalysisChannel(subscriberID),
		Event:   domain.EventAnalysisStarted,
		Data:    event,
	})
}

func (n *AnalysisNotifier) AnalysisComplete(ctx context.Context, subscriberID string, event domain.AnalysisCompleteEvent) error {
	return n.emitter.Emit(ctx, Message{
		Channel: domain.AnalysisChannel(subscriberID),
		Event:   domain.EventAnalysisComplete,
		Data:    event,
	})
}
