// Package exchange routes mail between registered sources. Collect drains a
// sender's outbound mail into staging keyed by recipient and sender; Deliver
// moves staged mail into the recipient's inbound sequences, preserving the
// order of mail from the same sender.
package exchange
