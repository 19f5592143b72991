// Package amqpintake consumes analytics events from a RabbitMQ topic exchange
// and feeds them to the same intake service the HTTP endpoint uses.
//
// Deliveries are acknowledged manually. A body that does not decode into an
// event is rejected without requeue. A store failure is requeued for
// another attempt.
package amqpintake
