package config

type WorkerKeyStruct struct {
	PersistAttemptsQueue string
	MailQueue            string
}

var WorkerKey = &WorkerKeyStruct{
	PersistAttemptsQueue: "persist_attempts_queue",
	MailQueue:            "mail_queue",
}
