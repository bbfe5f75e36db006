package app

// DraftEngineProvider is the full session engine surface the gateway wires
// into its handlers: lifecycle, mutation, pipeline and transfer operations.
type DraftEngineProvider interface {
	DraftLifecycleProvider
	DraftMutationProvider
	DraftPipelineProvider
	DraftTransferProvider
}
