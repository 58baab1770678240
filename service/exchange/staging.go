package exchange

import (
	"github.com/viant/fluxmesh/model/id"
	"github.com/viant/fluxmesh/model/mail"
)

// staging holds mail addressed to a single recipient, grouped by sender
type staging struct {
	senders []id.ID
	mails   map[id.ID][]*mail.Mail
}

func newStaging() *staging {
	return &staging{mails: map[id.ID][]*mail.Mail{}}
}

func (s *staging) add(item *mail.Mail) {
	if _, ok := s.mails[item.Sender]; !ok {
		s.senders = append(s.senders, item.Sender)
	}
	s.mails[item.Sender] = append(s.mails[item.Sender], item)
}

// prepend puts undelivered mail back ahead of mail staged in the meantime
func (s *staging) prepend(other *staging) {
	if other == nil {
		return
	}
	for i := len(other.senders) - 1; i >= 0; i-- {
		sender := other.senders[i]
		pending, ok := s.mails[sender]
		if ok {
			s.remove(sender)
		}
		s.mails[sender] = append(other.mails[sender], pending...)
		s.senders = append([]id.ID{sender}, s.senders...)
	}
}

func (s *staging) remove(sender id.ID) int {
	count := len(s.mails[sender])
	delete(s.mails, sender)
	for i, candidate := range s.senders {
		if candidate == sender {
			s.senders = append(s.senders[:i], s.senders[i+1:]...)
			break
		}
	}
	return count
}

func (s *staging) len() int {
	count := 0
	for _, items := range s.mails {
		count += len(items)
	}
	return count
}

func (s *staging) snapshot() map[id.ID][]*mail.Mail {
	ret := make(map[id.ID][]*mail.Mail, len(s.mails))
	for sender, items := range s.mails {
		ret[sender] = append([]*mail.Mail(nil), items...)
	}
	return ret
}
