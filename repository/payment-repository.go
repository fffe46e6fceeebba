package repository

// PaymentStatus is the operator-maintained paid flag for one player in one
// tournament. The registration workflow never writes this store.
type PaymentStatus struct {
	IsPaid bool `json:"isPaid"`
}

// paymentDocument is keyed tournamentId -> playerKey -> status, where
// playerKey is the CPF or, when absent, the email.
type paymentDocument map[string]map[string]PaymentStatus

type PaymentRepository struct {
	file *jsonFile[paymentDocument]
}

// FindByTournament returns the payment map for one tournament; missing
// entries default to unpaid.
func (r *PaymentRepository) FindByTournament(tournamentId string) map[string]PaymentStatus {
	doc := r.file.load()
	if doc == nil {
		return map[string]PaymentStatus{}
	}
	statuses, ok := doc[tournamentId]
	if !ok {
		return map[string]PaymentStatus{}
	}
	return statuses
}

func (r *PaymentRepository) SetStatus(tournamentId string, playerKey string, isPaid bool) error {
	return r.file.update(func(doc paymentDocument) (paymentDocument, error) {
		if doc == nil {
			doc = paymentDocument{}
		}
		if doc[tournamentId] == nil {
			doc[tournamentId] = map[string]PaymentStatus{}
		}
		doc[tournamentId][playerKey] = PaymentStatus{IsPaid: isPaid}
		return doc, nil
	})
}
